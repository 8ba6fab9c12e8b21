package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"github.com/kbukum/locallm/llm"
	"github.com/kbukum/locallm/lm"
	"github.com/kbukum/locallm/logger"
	"github.com/kbukum/locallm/observability"
	"github.com/kbukum/locallm/util"
	"github.com/kbukum/locallm/version"
)

const (
	probeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

func run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		printUsage()
		return nil
	}
	switch argv[0] {
	case "version", "--version", "-v":
		fmt.Println("locallm", version.GetVersionInfo().String())
		return nil
	case "infer":
		return runInfer(ctx, argv[1:])
	case "status":
		return runStatus(ctx, argv[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", argv[0])
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: locallm <command> [flags]

Commands:
  infer [flags] <prompt>   run one prompt and stream the answer to stdout
  status [flags]           check whether the configured backend is reachable
  version                  print the version

Run "locallm <command> -h" for the flags of a command.
`)
}

// commonFlags are shared by every command that talks to a backend.
type commonFlags struct {
	configFile string
	envFile    string
	backend    string
	serverURL  string
	verbose    bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configFile, "config", "", "config file (default: search locallm.yml)")
	fs.StringVar(&f.envFile, "env", "", ".env file (default: search .env)")
	fs.StringVar(&f.backend, "backend", "", "backend: local, koboldcpp, goinfer or ollama")
	fs.StringVar(&f.serverURL, "url", "", "backend server URL")
	fs.BoolVar(&f.verbose, "verbose", false, "log prompts, params and timings")
}

// load reads the config and applies flag overrides. The returned func
// unpins the verbose backend logger and must be called when the command ends.
func (f *commonFlags) load() (*appConfig, func(), error) {
	cfg, err := loadConfig(f.configFile, f.envFile)
	if err != nil {
		return nil, nil, err
	}
	if f.backend != "" {
		cfg.LLM.Backend = llm.Backend(f.backend)
	}
	if f.serverURL != "" {
		cfg.LLM.ServerURL = f.serverURL
	}
	if f.verbose {
		cfg.LLM.Verbose = true
	}
	logger.Init(cfg.Logging)
	return cfg, pinVerboseLogger(cfg), nil
}

// pinVerboseLogger raises the selected backend's logger to debug under
// -verbose so dropped params and wire payloads show without changing the
// level of everything else.
func pinVerboseLogger(cfg *appConfig) func() {
	name := string(cfg.LLM.Backend)
	if !cfg.LLM.Verbose || name == "" {
		return func() {}
	}
	debug := cfg.Logging
	debug.ApplyDefaults()
	debug.Level = "debug"
	logger.Register(name, logger.New(&debug, "locallm").WithComponent(name))
	return func() { logger.Unregister(name) }
}

func parseFlags(fs *flag.FlagSet, argv []string) (bool, error) {
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func runInfer(ctx context.Context, argv []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	var (
		model       = fs.String("model", "", "model to load before inference")
		ctxSize     = fs.Int("ctx", 0, "context window")
		gpuLayers   = fs.Int("gpu-layers", 0, "layers to offload to the GPU")
		maxTokens   = fs.Int("max-tokens", 0, "maximum tokens to generate")
		temperature = fs.Float64("temperature", -1, "sampling temperature")
		template    = fs.String("template", "", `prompt template with a "{prompt}" placeholder`)
	)
	if ok, err := parseFlags(fs, argv); !ok {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("a prompt is required")
	}
	prompt := fs.Arg(0)

	cfg, release, err := common.load()
	if err != nil {
		return err
	}
	defer release()
	if *model != "" {
		cfg.Model.Name = *model
	}
	if *ctxSize > 0 {
		cfg.Model.ContextSize = *ctxSize
	}
	if *gpuLayers > 0 {
		cfg.Model.GPULayers = *gpuLayers
	}
	params := cfg.Params
	if *maxTokens > 0 {
		params.MaxTokens = util.Ptr(*maxTokens)
	}
	if *temperature >= 0 {
		params.Temperature = util.Ptr(*temperature)
	}
	if *template != "" {
		params.Template = util.Ptr(*template)
	}

	shutdown, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	m, err := lm.New(cfg.LLM)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close(context.Background()) }()

	if cfg.Model.Name != "" {
		var opts []llm.LoadOption
		if cfg.Model.GPULayers > 0 {
			opts = append(opts, llm.WithGPULayers(cfg.Model.GPULayers))
		}
		if err := m.LoadModel(ctx, cfg.Model.Name, cfg.Model.ContextSize, opts...); err != nil {
			return err
		}
	}

	stopAbort := context.AfterFunc(ctx, func() {
		if err := m.Abort(context.Background()); err == nil {
			logger.Get("cli").Info("generation aborted")
		}
	})
	defer stopAbort()

	res, err := m.Infer(ctx, prompt, params)
	fmt.Println()
	if err != nil {
		return err
	}
	if cfg.LLM.Verbose {
		stats, _ := json.MarshalIndent(res.Stats, "", "  ")
		color.New(color.FgCyan).Fprintf(os.Stderr, "stats: %s\n", stats)
	}
	return nil
}

func runStatus(ctx context.Context, argv []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if ok, err := parseFlags(fs, argv); !ok {
		return err
	}

	cfg, release, err := common.load()
	if err != nil {
		return err
	}
	defer release()
	m, err := lm.New(cfg.LLM)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close(context.Background()) }()

	health := observability.NewServiceHealth(cfg.Name, version.GetVersionInfo().String())
	h := observability.ProbeHealth(ctx, m.Backend().String(), m.IsAvailable, probeTimeout)
	h.Details = map[string]string{}
	if cfg.LLM.ServerURL != "" {
		h.Details["server_url"] = cfg.LLM.ServerURL
	}
	if cfg.LLM.APIKey != "" {
		h.Details["api_key"] = util.MaskSecret(cfg.LLM.APIKey, 4)
	}
	if model := m.LoadedModel(); model != "" {
		h.Details["model"] = model
	}
	health.AddComponent(h)

	out, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if health.Status != observability.HealthStatusUp {
		return fmt.Errorf("%s is not reachable", m.Backend())
	}
	color.New(color.FgGreen).Fprintln(os.Stderr, "backend is up")
	return nil
}

// initObservability starts the OTLP exporters enabled in cfg and returns a
// function flushing them.
func initObservability(ctx context.Context, cfg *appConfig) (func(), error) {
	obs := cfg.Observability
	ver := version.GetVersionInfo().String()
	var shutdowns []func(context.Context) error

	if obs.Tracing {
		tp, err := observability.InitTracer(ctx, obs.TracerConfig(cfg.Name, ver, cfg.Environment))
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}
	if obs.Metrics {
		mp, err := observability.InitMeter(ctx, obs.MeterConfig(cfg.Name, ver, cfg.Environment))
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
		metrics, err := observability.NewInferenceMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return nil, err
		}
		cfg.LLM.Metrics = metrics
	}

	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, fn := range shutdowns {
			if err := fn(sctx); err != nil {
				logger.Get("cli").Warn("observability shutdown failed", logger.ErrorFields("shutdown", err))
			}
		}
	}, nil
}
