package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/melodist/melodist/batch"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/store"
)

var batchFlags struct {
	config   string
	workers  int
	outDir   string
	s3Bucket string
}

func init() {
	rootCmd.AddCommand(batchCmd)
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.config, "config", "c", "", "JSON file holding an array of generation requests")
	f.IntVar(&batchFlags.workers, "workers", 4, "concurrent jobs")
	f.StringVar(&batchFlags.outDir, "out-dir", "out", "output directory")
	f.StringVar(&batchFlags.s3Bucket, "s3-bucket", "", "also upload results to this S3 bucket")
	batchCmd.MarkFlagRequired("config")
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Composes many pieces concurrently",
	Long:  `Composes many pieces concurrently`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		data, err := os.ReadFile(batchFlags.config)
		if err != nil {
			return fmt.Errorf("could not read config: %w", err)
		}
		var jobs []model.GenerateParams
		if err := json.Unmarshal(data, &jobs); err != nil {
			return fmt.Errorf("could not parse config: %w", err)
		}

		opts := batch.Options{
			Workers: batchFlags.workers,
			OutDir:  batchFlags.outDir,
		}
		if batchFlags.s3Bucket != "" {
			uploader, err := store.NewUploader(batchFlags.s3Bucket, log)
			if err != nil {
				return err
			}
			opts.Uploader = uploader
		}

		results, err := batch.Run(log, jobs, opts)
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Printf("job %d: FAILED: %v\n", r.Index, r.Err)
				continue
			}
			fmt.Printf("job %d: %s (seed %d)\n", r.Index, r.Path, r.Seed)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d jobs failed", failed, len(results))
		}
		return nil
	},
}
