package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"proxylink/internal/clash"
	"proxylink/internal/collectors"
	"proxylink/internal/config"
	"proxylink/internal/db"
	"proxylink/internal/geoip"
	"proxylink/internal/logger"
	"proxylink/internal/metrics"
	"proxylink/internal/model"
	"proxylink/internal/publishers"
	"proxylink/internal/xray/parser"
)

var (
	convertParams   map[string]string
	flagCollectors  []string
	flagPublishers  []string
	flagBase64      bool
	flagSkipInvalid bool
	flagWorkers     int
	flagProgress    bool
	flagMetricsFile string
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert proxy lists into a subscription",
	Long: `Reads records from the configured collectors (or from the YAML files given as
arguments), converts them to share links and hands the result to every publisher.
Records of unsupported type are dropped. By default the first invalid record aborts
the run; --skip-invalid logs it and continues instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Log.Fatalf("Error loading config: %v", err)
		}
		applyConvertFlags(cmd, cfg, args)

		if len(cfg.Collectors) == 0 {
			logger.Log.Warn("No collectors matched the provided names.")
			return
		}
		if len(cfg.Publishers) == 0 {
			logger.Log.Warn("No publishers matched the provided names.")
			return
		}

		if err := geoip.Init(cfg.GeoIP.CountryPath); err != nil {
			logger.Log.Warnf("%v. Names will not be tagged.", err)
		}
		defer geoip.Close()

		m := metrics.New()
		opts := convertOptions{
			workers:     cfg.Convert.Workers,
			skipInvalid: cfg.Convert.SkipInvalid,
			progress:    flagProgress,
		}

		start := time.Now()
		var links []clash.Link
		var rows []model.Link
		for _, cCfg := range cfg.Collectors {
			logger.Log.Infof("🏃 Running collector: %s (%s)...", cCfg.Name, cCfg.Type)

			collector, err := collectors.Get(cCfg.Type)
			if err != nil {
				logger.Log.Warnf("Skipping: %v", err)
				continue
			}
			records, err := collector.Collect(cCfg.Params)
			if err != nil {
				logger.Log.Fatalf("Error running collector %s: %v", cCfg.Name, err)
			}

			if geoip.Enabled() {
				for i := range records {
					records[i] = geoip.TagRecord(records[i])
				}
			}

			batch, err := convertRecords(cmd.Context(), records, opts, m)
			if err != nil {
				logger.Log.Fatalf("Conversion of %s failed: %v", cCfg.Name, err)
			}
			logger.Log.Infof("✅ Collector %s: %d records, %d links.", cCfg.Name, len(records), len(batch))

			links = append(links, batch...)
			rows = append(rows, archiveRows(batch, cCfg.Name)...)
		}
		m.RecordDuration(time.Since(start))

		for _, pubCfg := range cfg.Publishers {
			logger.Log.Infof("📨 Running Publisher: %s (%s)...", pubCfg.Name, pubCfg.Type)

			plugin, err := publishers.Get(pubCfg.Type)
			if err != nil {
				logger.Log.Warnf("Plugin not found: %v", err)
				continue
			}
			if err := plugin.Publish(links, pubCfg.Params); err != nil {
				logger.Log.Errorf("Publish failed: %v", err)
			}
		}

		if cfg.Archive.Enabled {
			archive(cfg.Archive, rows)
		}

		m.PrintReport(os.Stderr)
		if cfg.Metrics.Textfile != "" {
			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Log.Errorf("%v", err)
			}
		}
	},
}

// applyConvertFlags lets command-line flags and arguments override the config.
func applyConvertFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		paths := make([]interface{}, len(args))
		for i, a := range args {
			paths[i] = a
		}
		cfg.Collectors = []config.CollectorConfig{{
			Name:   "args",
			Type:   "file",
			Params: map[string]interface{}{"path": paths},
		}}
	} else {
		cfg.FilterCollectors(flagCollectors)
	}
	cfg.FilterPublishers(flagPublishers)

	if cmd.Flags().Changed("workers") {
		cfg.Convert.Workers = flagWorkers
	}
	if cmd.Flags().Changed("skip-invalid") {
		cfg.Convert.SkipInvalid = flagSkipInvalid
	}
	if cmd.Flags().Changed("base64") {
		cfg.Output.Base64 = flagBase64
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Metrics.Textfile = flagMetricsFile
	}

	for i := range cfg.Publishers {
		if cfg.Publishers[i].Params == nil {
			cfg.Publishers[i].Params = make(map[string]interface{})
		}
		if _, ok := cfg.Publishers[i].Params["base64"]; !ok || cmd.Flags().Changed("base64") {
			cfg.Publishers[i].Params["base64"] = cfg.Output.Base64
		}
		for k, v := range convertParams {
			if b, err := strconv.ParseBool(v); err == nil {
				cfg.Publishers[i].Params[k] = b
			} else {
				cfg.Publishers[i].Params[k] = v
			}
		}
	}
}

type convertOptions struct {
	workers     int
	skipInvalid bool
	progress    bool
}

// convertRecords turns one collector's records into links. Without
// skipInvalid the batch keeps clash.ConvertAll semantics: the first invalid
// record aborts it.
func convertRecords(ctx context.Context, records []clash.Record, opts convertOptions, m *metrics.Collector) ([]clash.Link, error) {
	if !opts.skipInvalid && !opts.progress {
		links, err := clash.ConvertConcurrent(ctx, records, opts.workers)
		if err != nil {
			m.RecordFailure(err)
			return nil, err
		}
		for i := len(links); i < len(records); i++ {
			m.RecordFailure(clash.ErrUnknownType)
		}
		for _, l := range links {
			recordLink(m, l)
		}
		return links, nil
	}

	var bar *progressbar.ProgressBar
	if opts.progress {
		bar = progressbar.NewOptions(len(records),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription("[cyan]Converting...[reset]"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer bar.Finish()
	}

	links := make([]clash.Link, 0, len(records))
	for i, r := range records {
		if bar != nil {
			_ = bar.Add(1)
		}
		l, err := clash.Encode(r)
		if err != nil {
			m.RecordFailure(err)
			if errors.Is(err, clash.ErrUnknownType) {
				logger.Log.Debugf("Dropping record #%d: %v", i, err)
				continue
			}
			if opts.skipInvalid {
				logger.Log.Warnf("Skipping record #%d (%s): %v", i, r.Text("name"), err)
				continue
			}
			return nil, &recordError{index: i, err: err}
		}
		recordLink(m, l)
		links = append(links, l)
	}
	return links, nil
}

func recordLink(m *metrics.Collector, l clash.Link) {
	m.RecordLink(l)
	for _, w := range l.Warnings {
		logger.Log.Warnf("%s %q: %s", l.Kind, l.Name, w.Message)
	}
}

type recordError struct {
	index int
	err   error
}

func (e *recordError) Error() string {
	return "proxy #" + strconv.Itoa(e.index) + ": " + e.err.Error()
}

func (e *recordError) Unwrap() error { return e.err }

// archiveRows prepares links for the archive, keyed by their server identity.
func archiveRows(links []clash.Link, source string) []model.Link {
	rows := make([]model.Link, 0, len(links))
	now := time.Now()
	for _, l := range links {
		p, err := parser.Parse(l.URI)
		if err != nil {
			logger.Log.Debugf("Not archiving %s link %q: %v", l.Kind, l.Name, err)
			continue
		}
		row := model.Link{
			Hash:      p.CalculateHash(),
			Kind:      string(l.Kind),
			Name:      l.Name,
			URI:       l.URI,
			Source:    source,
			CreatedAt: now,
			Address:   p.Address,
			Port:      p.Port,
		}
		if geoip.Enabled() {
			row.Country, _ = geoip.Country(p.Address)
		}
		rows = append(rows, row)
	}
	return rows
}

func archive(cfg config.ArchiveConfig, rows []model.Link) {
	database, err := db.Connect(cfg.Path)
	if err != nil {
		logger.Log.Errorf("Error connecting to archive: %v", err)
		return
	}
	defer db.Close(database)
	if err := db.Migrate(database); err != nil {
		logger.Log.Errorf("Error migrating archive: %v", err)
		return
	}

	added, err := db.SaveLinks(database, rows)
	if err != nil {
		logger.Log.Errorf("%v", err)
		return
	}
	logger.Log.Infof("🗄️  Archived %d new links.", added)

	if cfg.MaxLinks > 0 {
		if removed, err := db.Prune(database, cfg.MaxLinks); err != nil {
			logger.Log.Errorf("Pruning failed: %v", err)
		} else if removed > 0 {
			logger.Log.Infof("✂️  Pruned %d old links.", removed)
		}
	}
}

func init() {
	convertCmd.Flags().StringToStringVarP(&convertParams, "param", "p", nil, "Override publisher params (e.g. -p path=sub.txt)")
	convertCmd.Flags().StringSliceVar(&flagCollectors, "collector", nil, "Run only the named collectors")
	convertCmd.Flags().StringSliceVar(&flagPublishers, "publisher", nil, "Run only the named publishers")
	convertCmd.Flags().BoolVar(&flagBase64, "base64", false, "Base64-encode the subscription body")
	convertCmd.Flags().BoolVar(&flagSkipInvalid, "skip-invalid", false, "Log and skip invalid records instead of aborting")
	convertCmd.Flags().IntVar(&flagWorkers, "workers", 4, "Concurrent encoders (1 = sequential)")
	convertCmd.Flags().BoolVar(&flagProgress, "progress", false, "Show a progress bar")
	convertCmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	rootCmd.AddCommand(convertCmd)
}
