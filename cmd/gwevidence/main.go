package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rxwx/Ghostwriter/evidence"
	"github.com/rxwx/Ghostwriter/richtext"
)

const (
	formatJSON     = "json"
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// fileConfig is the optional YAML config file. Environment variables
// (GHOSTWRITER_*) override it, flags override both.
type fileConfig struct {
	GraphQLURL   string `yaml:"graphqlUrl"`
	APIToken     string `yaml:"apiToken"`
	MediaBaseURL string `yaml:"mediaBaseUrl"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}

	return config.Build()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	endpoint := flag.String("endpoint", "", "GraphQL endpoint URL")
	mediaBase := flag.String("media-base", "", "Media base URL prefixed to stored document paths")
	report := flag.Int("report", 0, "Report id to attach the evidence to")
	finding := flag.Int("finding", 0, "Finding id to attach the evidence to (wins over -report)")
	format := flag.String("format", formatJSON, "Output format: json|html|markdown")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall request timeout")
	verbose := flag.Bool("verbose", false, "Log upload progress")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gwevidence [options] <image-file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputFile := args[0]

	fileCfg, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}

	viper.SetEnvPrefix("ghostwriter")
	viper.AutomaticEnv()

	resolvedEndpoint := firstNonEmpty(*endpoint, viper.GetString("graphql_url"), fileCfg.GraphQLURL)
	resolvedMediaBase := firstNonEmpty(*mediaBase, viper.GetString("media_url"), fileCfg.MediaBaseURL)
	token := firstNonEmpty(viper.GetString("api_token"), fileCfg.APIToken)

	if resolvedEndpoint == "" {
		fmt.Fprintf(os.Stderr, "Error: no GraphQL endpoint configured (use -endpoint or GHOSTWRITER_GRAPHQL_URL)\n")
		os.Exit(1)
	}
	if resolvedMediaBase == "" {
		fmt.Fprintf(os.Stderr, "Error: no media base URL configured (use -media-base or GHOSTWRITER_MEDIA_URL)\n")
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	uploadCtx := evidence.Context{MediaBaseURL: resolvedMediaBase}
	if *finding > 0 {
		uploadCtx.FindingID = finding
	}
	if *report > 0 {
		uploadCtx.ReportID = report
	}

	client, err := evidence.NewClient(resolvedEndpoint, token, &http.Client{Timeout: *timeout}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}

	uploader, err := evidence.NewUploader(client, uploadCtx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating uploader: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	record, err := uploader.UploadAndResolve(ctx, evidence.Upload{
		Filename: filepath.Base(inputFile),
		Data:     data,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error uploading evidence: %v\n", err)
		os.Exit(1)
	}

	node := richtext.NewImageNode(richtext.ImageAttrs{
		Src:   record.URL,
		Alt:   record.FriendlyName,
		Title: record.FriendlyName,
	})

	switch strings.ToLower(*format) {
	case formatJSON:
		pretty, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting node: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(pretty))

	case formatHTML, formatMarkdown:
		schema, err := richtext.NewSchema(richtext.Config{Logger: log})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating schema: %v\n", err)
			os.Exit(1)
		}
		doc := richtext.NewDoc(node)

		var result richtext.Result
		if strings.ToLower(*format) == formatHTML {
			result, err = schema.RenderHTML(doc)
		} else {
			result, err = schema.RenderMarkdown(doc)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering node: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(result.Output)

	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q (allowed: json, html, markdown)\n", *format)
		os.Exit(1)
	}
}
