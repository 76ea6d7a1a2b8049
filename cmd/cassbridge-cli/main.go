// cassbridge-cli runs CQL against a cluster through the same handle API the
// shared library exposes to C callers.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/casserr"
	util_log "github.com/grafana/cassbridge/pkg/util/log"
)

type globalOptions struct {
	hosts       string
	keyspace    string
	username    string
	password    string
	configFile  string
	logLevel    string
	metricsAddr string
}

func main() {
	app := kingpin.New("cassbridge-cli", "Run CQL through the cassbridge handle API.")
	var opts globalOptions
	app.Flag("hosts", "Comma separated contact points.").Default("127.0.0.1").StringVar(&opts.hosts)
	app.Flag("keyspace", "Keyspace to connect to.").StringVar(&opts.keyspace)
	app.Flag("username", "Username for plain text authentication.").StringVar(&opts.username)
	app.Flag("password", "Password for plain text authentication.").StringVar(&opts.password)
	app.Flag("config.file", "YAML file with cluster defaults.").StringVar(&opts.configFile)
	app.Flag("log.level", "Only log messages with the given severity or above.").Default("warn").EnumVar(&opts.logLevel, "debug", "info", "warn", "error")
	app.Flag("metrics.listen-address", "Serve /metrics and /log_level on this address while running.").StringVar(&opts.metricsAddr)

	addQueryCommand(app, &opts)
	addSchemaCommand(app, &opts)

	app.PreAction(func(_ *kingpin.ParseContext) error {
		return opts.setup()
	})

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func (o *globalOptions) setup() error {
	var lvl dslog.Level
	if err := lvl.Set(o.logLevel); err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	cass.Registerer = reg
	util_log.InitLogger(lvl, os.Stderr, reg)

	if o.configFile != "" {
		if _, err := cass.LoadConfig(o.configFile); err != nil {
			return err
		}
		if err := os.Setenv(cass.ConfigFileEnv, o.configFile); err != nil {
			return err
		}
	}

	if o.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.Handle("/log_level", util_log.LevelHandler(&lvl))
		go func() {
			if err := http.ListenAndServe(o.metricsAddr, mux); err != nil {
				level.Error(util_log.Logger).Log("msg", "metrics server stopped", "err", err)
			}
		}()
	}
	return nil
}

// connect returns a connected session. The caller frees both handles.
func (o *globalOptions) connect() (argconv.Ptr[cass.Cluster], argconv.Ptr[cass.Session], error) {
	cluster := cass.ClusterNew()
	if code := cass.ClusterSetContactPoints(cluster, o.hosts); code != casserr.OK {
		cass.ClusterFree(cluster)
		return argconv.Null[cass.Cluster](), argconv.Null[cass.Session](), fmt.Errorf("contact points: %s", code.Desc())
	}
	if o.username != "" {
		cass.ClusterSetCredentials(cluster, o.username, o.password)
	}

	session := cass.SessionNew()
	var f argconv.Ptr[cass.Future]
	if o.keyspace != "" {
		f = cass.SessionConnectKeyspace(session, cluster, o.keyspace)
	} else {
		f = cass.SessionConnect(session, cluster)
	}
	defer cass.FutureFree(f)
	if err := futureErr(f); err != nil {
		cass.SessionFree(session)
		cass.ClusterFree(cluster)
		return argconv.Null[cass.Cluster](), argconv.Null[cass.Session](), fmt.Errorf("connect: %w", err)
	}
	return cluster, session, nil
}

func futureErr(f argconv.Ptr[cass.Future]) error {
	if code := cass.FutureErrorCode(f); code != casserr.OK {
		return fmt.Errorf("%s: %s", code.Desc(), cass.FutureErrorMessage(f))
	}
	return nil
}
