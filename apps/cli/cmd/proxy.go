package cmd

import (
	"os"
	"os/signal"
	"syscall"

	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"github.com/abdul-hamid-achik/hitstudio/packages/proxy"
	"github.com/spf13/cobra"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the forwarding proxy",
	Long: `Run the HTTP proxy that send dispatches through. It accepts a JSON
request envelope on POST, performs the request and answers with the
target's status, headers and body.

Examples:
  hitstudio proxy
  hitstudio proxy --listen :8080
  hitstudio proxy --upstream-proxy http://corp-proxy:3128`,
	Args: cobra.NoArgs,
	RunE: proxyCommand,
}

var (
	listenFlag        string
	sanitizeFlag      []string
	upstreamProxyFlag string
)

func init() {
	proxyCmd.Flags().StringVar(&listenFlag, "listen", getEnvString("HITSTUDIO_LISTEN", ""), "Address to listen on (env: HITSTUDIO_LISTEN)")
	proxyCmd.Flags().StringVar(&upstreamProxyFlag, "upstream-proxy", getEnvString("HITSTUDIO_UPSTREAM_PROXY", ""), "Outbound proxy URL for forwarded requests (env: HITSTUDIO_UPSTREAM_PROXY)")
	proxyCmd.Flags().StringSliceVar(&sanitizeFlag, "sanitize", nil, "Headers to redact in proxy logs, replacing the built-in list")
}

func proxyCommand(cmd *cobra.Command, args []string) error {
	addr := appConfig.Listen
	if listenFlag != "" {
		addr = listenFlag
	}

	outbound := appConfig.UpstreamProxy
	if upstreamProxyFlag != "" {
		outbound = upstreamProxyFlag
	}

	// configured headers may replace the User-Agent
	upstream := hithttp.NewClient(
		hithttp.WithFollowRedirects(appConfig.GetFollowRedirects()),
		hithttp.WithMaxRedirects(appConfig.MaxRedirects),
		hithttp.WithValidateSSL(appConfig.GetValidateSSL()),
		hithttp.WithProxy(outbound),
		hithttp.WithDefaultHeader("User-Agent", "hitstudio/"+version),
		hithttp.WithDefaultHeaders(appConfig.Headers),
	)

	opts := []proxy.ForwarderOption{
		proxy.WithUpstreamClient(upstream),
		proxy.WithForwarderLogger(logger),
	}
	if len(sanitizeFlag) > 0 {
		opts = append(opts, proxy.WithSanitize(sanitizeFlag))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Sugar().Infof("proxy listening on %s", addr)
	if err := proxy.NewForwarder(opts...).ListenAndServe(ctx, addr); err != nil {
		return &exitError{code: ExitNetworkError, err: err}
	}
	return nil
}
