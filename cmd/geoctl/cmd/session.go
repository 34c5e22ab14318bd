package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/go-drift/geolocation/cmd/geoctl/internal/config"
	"github.com/go-drift/geolocation/cmd/geoctl/internal/logging"
	drifterrors "github.com/go-drift/geolocation/pkg/errors"
	"github.com/go-drift/geolocation/pkg/geolocation"
	"github.com/go-drift/geolocation/pkg/page"
	"github.com/go-drift/geolocation/pkg/prompt"
	"github.com/go-drift/geolocation/pkg/simdevice"
)

// session is everything a command needs: config, logger, the simulated
// device installed as native bridge, and a page over the negotiator.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	device  *simdevice.Device
	metrics *geolocation.Metrics
	page    *page.Page

	closers []func()
}

func newSession(cmd *cobra.Command, v *viper.Viper, file string) (*session, error) {
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger}
	s.closers = append(s.closers, closeLog)
	handler := drifterrors.NewLogHandler(logger)
	handler.Verbose = cfg.Log.Level == "debug"
	drifterrors.SetHandler(handler)

	profile, err := simdevice.LoadProfile(cfg.Profile)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.device = simdevice.New(profile, simdevice.WithLogger(logger))
	s.device.Install()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	s.metrics = geolocation.NewMetrics(reg)
	if cfg.Metrics.Addr != "" {
		s.serveMetrics(reg, cfg.Metrics.Addr)
	}

	negotiator := geolocation.NewPlatformNegotiator(
		s.prompter(cmd),
		geolocation.WithLogger(logger),
		geolocation.WithMetrics(s.metrics),
		geolocation.WithDefaultFetchOptions(cfg.FetchOptions()),
	)
	s.page = page.New(negotiator, page.WithLogger(logger), page.WithMetrics(s.metrics))
	return s, nil
}

func (s *session) prompter(cmd *cobra.Command) geolocation.Prompter {
	switch s.cfg.Prompt {
	case config.PromptYes:
		return prompt.Fixed(true)
	case config.PromptNo:
		return prompt.Fixed(false)
	default:
		// Dialogs go to stderr so stdout only carries results.
		return prompt.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
}

func (s *session) serveMetrics(reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		defer drifterrors.Recover("geoctl.metrics")
		s.logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	s.closers = append(s.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
}

// Close releases the session in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
