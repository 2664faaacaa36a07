package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/anzolabs/bunnysync/internal/config"
	"github.com/anzolabs/bunnysync/internal/logging"
	"github.com/anzolabs/bunnysync/internal/render"
	"github.com/anzolabs/bunnysync/pkg/planner"
	"github.com/anzolabs/bunnysync/pkg/progress"
	"github.com/anzolabs/bunnysync/pkg/storage"
	"github.com/anzolabs/bunnysync/pkg/syncer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

var (
	configPath  string
	zone        string
	accessKey   string
	region      string
	concurrency int
	dryRun      bool
	failFast    bool
	uploadLast  []string
	excludes    []string
	quiet       bool
	verbose     bool
	noProgress  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bunnysync",
		Short: "Mirror a local directory tree to or from edge storage",
		Long: `bunnysync synchronizes a local directory with a storage zone reachable
through the flat HTTP object API (or an s3:// URI), making the destination
match the source, including deletions.`,
		Version:       fmt.Sprintf("%s (commit: %s, built at: %s by %s)", version, commit, date, builtBy),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")
	pf.StringVar(&zone, "zone", "", "Storage zone name")
	pf.StringVar(&accessKey, "access-key", "", "Storage access key (or "+config.EnvAccessKey+")")
	pf.StringVar(&region, "region", "", "Storage region code (de, ny, la, sg, syd)")
	pf.IntVar(&concurrency, "concurrency", 8, "Number of concurrent transfers (1-64)")
	pf.BoolVar(&dryRun, "dryrun", false, "Show operations without executing them")
	pf.BoolVar(&failFast, "fail-fast", true, "Abort the run on the first transfer error")
	pf.StringSliceVar(&uploadLast, "upload-last", nil, "File patterns to upload in the final tier (multiple allowed)")
	pf.StringSliceVar(&excludes, "exclude", nil, "Exclude patterns (multiple allowed)")
	pf.BoolVar(&quiet, "quiet", false, "Suppress non-error output")
	pf.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	pf.BoolVar(&noProgress, "no-progress", false, "Disable the live progress view")

	pushCmd := &cobra.Command{
		Use:   "push <LocalPath> <Remote>",
		Short: "Upload local state to the remote, deleting remote objects absent locally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, planner.DirectionPush, args[0], args[1])
		},
	}

	pullCmd := &cobra.Command{
		Use:   "pull <Remote> <LocalPath>",
		Short: "Download remote state locally, deleting local files absent remotely",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, planner.DirectionPull, args[1], args[0])
		},
	}

	rootCmd.AddCommand(pushCmd, pullCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, direction planner.Direction, localPath, remote string) error {
	log := logging.Setup(quiet, verbose)
	fsys := afero.NewOsFs()
	ctx := context.Background()

	cfg, err := config.Load(fsys, configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if zone == "" {
		zone = cfg.Zone
	}
	if region == "" {
		region = cfg.Region
	}
	if !cmd.Flags().Changed("concurrency") && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	uploadLast = append(uploadLast, cfg.UploadLast...)
	excludes = append(excludes, cfg.Excludes...)

	client, remoteBase, err := buildClient(ctx, remote, cfg)
	if err != nil {
		return err
	}

	tracker := progress.NewTracker(nil)
	sampler := progress.NewSampler(tracker, progress.DefaultInterval, progress.CompletedGrace)
	if !quiet && !noProgress {
		view := render.NewView()
		sampler.Start(view.Render)
		defer sampler.Stop()
	}

	start := time.Now()
	summary, err := syncer.RunSync(ctx, syncer.Options{
		Direction:   direction,
		LocalRoot:   localPath,
		RemoteBase:  remoteBase,
		Concurrency: concurrency,
		DryRun:      dryRun,
		FailFast:    failFast,
		UploadLast:  uploadLast,
		Excludes:    excludes,
		Client:      client,
		FS:          fsys,
		Tracker:     tracker,
		Logger:      log,
	})
	sampler.Stop()

	if !quiet {
		snap := tracker.Snapshot()
		render.PrintSummary(os.Stdout, summary.Transferred, summary.Skipped,
			summary.Deleted, summary.Failed, snap.CompletedBytes, time.Since(start))
	}

	return err
}

// buildClient selects the backend from the remote argument: an s3:// URI
// targets a bucket, anything else is a sub-path within the configured zone.
func buildClient(ctx context.Context, remote string, cfg config.Config) (storage.Client, string, error) {
	if strings.HasPrefix(remote, "s3://") {
		bucket, prefix, err := storage.ParseS3URI(remote)
		if err != nil {
			return nil, "", fmt.Errorf("invalid S3 URI: %w", err)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3Client(awsCfg, bucket, prefix), "", nil
	}

	key := config.ResolveAccessKey(accessKey, cfg)
	client, err := storage.NewBunnyClient(zone, key, region)
	if err != nil {
		return nil, "", err
	}
	if remote == "/" {
		remote = ""
	}
	return client, remote, nil
}
