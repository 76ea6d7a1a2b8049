// Package gocqldriver implements the driver interfaces on top of gocql.
package gocqldriver

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// Connector opens gocql sessions.
type Connector struct {
	logger  log.Logger
	metrics *Metrics
}

// New makes a Connector. Driver metrics are registered with reg.
func New(logger log.Logger, reg prometheus.Registerer) *Connector {
	installLogger(logger)
	return &Connector{
		logger:  logger,
		metrics: NewMetrics(reg),
	}
}

// Connect implements driver.Connector.
func (c *Connector) Connect(ctx context.Context, cfg *driver.ClusterConfig) (driver.Conn, error) {
	if len(cfg.ContactPoints) == 0 {
		return nil, casserr.New(casserr.LibNoHostsAvailable, "No contact points provided")
	}

	cluster := c.clusterConfig(cfg)

	type created struct {
		session *gocql.Session
		err     error
	}
	ch := make(chan created, 1)
	go func() {
		s, err := cluster.CreateSession()
		ch <- created{s, err}
	}()

	var res created
	select {
	case res = <-ch:
	case <-ctx.Done():
		go func() {
			if late := <-ch; late.session != nil {
				late.session.Close()
			}
		}()
		c.metrics.connects.WithLabelValues("error").Inc()
		return nil, casserr.New(casserr.LibUnableToConnect, ctx.Err().Error())
	}
	if res.err != nil {
		c.metrics.connects.WithLabelValues("error").Inc()
		level.Warn(c.logger).Log("msg", "unable to connect", "hosts", len(cfg.ContactPoints), "err", res.err)
		return nil, toConnectError(errors.Wrap(res.err, "create session"))
	}
	c.metrics.connects.WithLabelValues("success").Inc()

	return newConn(res.session, cfg, c.logger), nil
}

func (c *Connector) clusterConfig(cfg *driver.ClusterConfig) *gocql.ClusterConfig {
	hosts := make([]string, 0, len(cfg.ContactPoints))
	for _, h := range cfg.ContactPoints {
		if _, _, err := net.SplitHostPort(h); err == nil {
			hosts = append(hosts, h)
			continue
		}
		hosts = append(hosts, net.JoinHostPort(h, strconv.Itoa(cfg.Port)))
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.ProtoVersion = cfg.ProtocolVersion
	cluster.ConnectTimeout = cfg.ConnectTimeout
	// Deadlines live on the request context only.
	cluster.Timeout = 0
	if cfg.DefaultProfile.Consistency != driver.ConsistencyUnset {
		cluster.Consistency = gocql.Consistency(cfg.DefaultProfile.Consistency)
	}
	if cfg.DefaultProfile.SerialConsistency.IsSerial() {
		cluster.SerialConsistency = gocql.SerialConsistency(cfg.DefaultProfile.SerialConsistency)
	}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	cluster.Compressor = newCompressor(cfg.Compression)
	cluster.Dialer = tcpDialer{
		dialer: net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: keepalive(cfg),
		},
		noDelay: cfg.TCPNoDelay,
	}
	cluster.ReconnectionPolicy = reconnectionPolicy(cfg.Reconnect)
	cluster.RetryPolicy = newRetryPolicy(cfg.DefaultProfile.RetryPolicy, c.logger)
	cluster.PoolConfig.HostSelectionPolicy = hostSelectionPolicy(cfg.DefaultProfile.LoadBalancing)
	if cfg.MaxSchemaWait > 0 {
		cluster.MaxWaitSchemaAgreement = cfg.MaxSchemaWait
	}
	cluster.Events.DisableSchemaEvents = !cfg.FetchSchema

	obs := observer{metrics: c.metrics, logger: c.logger}
	cluster.QueryObserver = obs
	cluster.BatchObserver = obs

	// Settings gocql has no knob for.
	if cfg.HeartbeatInterval > 0 || cfg.IdleTimeout > 0 {
		level.Debug(c.logger).Log("msg", "connection heartbeat and idle timeout are managed by gocql", "heartbeat", cfg.HeartbeatInterval, "idle_timeout", cfg.IdleTimeout)
	}
	if cfg.ApplicationName != "" || cfg.ApplicationVersion != "" {
		level.Debug(c.logger).Log("msg", "application name and version are not sent in STARTUP", "name", cfg.ApplicationName, "version", cfg.ApplicationVersion)
	}
	if cfg.SchemaAgreementInterval > 0 {
		level.Debug(c.logger).Log("msg", "schema agreement interval is fixed by gocql", "interval", cfg.SchemaAgreementInterval)
	}
	if lb := cfg.DefaultProfile.LoadBalancing; lb != nil && lb.LatencyAware {
		level.Debug(c.logger).Log("msg", "latency aware routing is not available, using the configured host policy")
	}
	return cluster
}

func keepalive(cfg *driver.ClusterConfig) time.Duration {
	if !cfg.TCPKeepalive {
		return -1
	}
	return cfg.TCPKeepaliveDelay
}

func reconnectionPolicy(p driver.ReconnectPolicy) gocql.ReconnectionPolicy {
	if p.Exponential {
		return &gocql.ExponentialReconnectionPolicy{
			MaxRetries:      10,
			InitialInterval: p.BaseDelay,
			MaxInterval:     p.MaxDelay,
		}
	}
	interval := p.BaseDelay
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &gocql.ConstantReconnectionPolicy{MaxRetries: 10, Interval: interval}
}

func hostSelectionPolicy(lb *driver.LoadBalancing) gocql.HostSelectionPolicy {
	if lb == nil {
		return gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	}
	var policy gocql.HostSelectionPolicy
	if lb.Kind == driver.DCAware && lb.LocalDC != "" {
		policy = gocql.DCAwareRoundRobinPolicy(lb.LocalDC)
	} else {
		policy = gocql.RoundRobinHostPolicy()
	}
	if !lb.TokenAware {
		return policy
	}
	if lb.ShuffleReplicas {
		return gocql.TokenAwareHostPolicy(policy, gocql.ShuffleReplicas())
	}
	return gocql.TokenAwareHostPolicy(policy)
}

// tcpDialer applies the TCP options gocql does not expose.
type tcpDialer struct {
	dialer  net.Dialer
	noDelay bool
}

func (d tcpDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := d.dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(d.noDelay); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "set TCP_NODELAY")
		}
	}
	return conn, nil
}
