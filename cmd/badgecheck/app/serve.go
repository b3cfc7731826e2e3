package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/openbadges/badgecheck"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve badge verification over HTTP",
		Long: `Start an HTTP server that verifies badges.

  POST /verify   badge in the body (JSON, hosted URL or baked image) or a
                 multipart "badge" file, recipients in ?recipient=
  GET  /verify   badge in ?badge=
  GET  /metrics  Prometheus metrics
  GET  /healthz  liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			v, err := c.newVerifier(
				badgecheck.WithMetrics(badgecheck.NewPrometheusMetrics(registry)),
				badgecheck.WithTracer(badgecheck.NewOpenTelemetryTracer(otel.Tracer("badgecheck"))),
				badgecheck.WithArtifactExtractor(badgecheck.MultiArtifactExtractor(
					badgecheck.FormFileArtifactExtractor("badge"),
					badgecheck.ParameterArtifactExtractor("badge"),
					badgecheck.BodyArtifactExtractor,
				)),
			)
			if err != nil {
				return err
			}

			if c.log.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:              c.v.GetString("addr"),
				Handler:           newRouter(v, registry),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.run(ctx, srv)
		},
	}

	addVerifierFlags(cmd)
	cmd.Flags().String("addr", ":8080", "address to listen on")
	return cmd
}

// run serves until ctx is done, then shuts srv down gracefully.
func (c *cli) run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		c.log.WithField("addr", srv.Addr).Info("starting badge verification server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func newRouter(v *badgecheck.Verifier, registry *prometheus.Registry) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	r.GET("/verify", v.GinHandler())
	r.POST("/verify", v.GinHandler())
	return r
}
