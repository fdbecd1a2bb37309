package chatrelay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Seann-Moser/chatrelay/chat"
	"github.com/Seann-Moser/chatrelay/config"
	"github.com/Seann-Moser/chatrelay/credential"
	"github.com/Seann-Moser/chatrelay/nonce"
	"github.com/Seann-Moser/chatrelay/oauth"
	"github.com/Seann-Moser/chatrelay/server"
	"github.com/Seann-Moser/chatrelay/session"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Sweeper removes expired credential records.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Relay owns every component built from a Config.
type Relay struct {
	store   credential.Store
	sweeper Sweeper
	handler http.Handler
	logger  *zap.Logger
}

// Backends are the optional external connections. A nil DB selects the
// in-memory credential store; a nil Redis keeps issued nonces in memory.
type Backends struct {
	DB    *mongo.Database
	Redis nonce.RedisClient
}

// New builds the relay. With a database it also ensures the store indexes.
func New(ctx context.Context, cfg config.Config, b Backends, logger *zap.Logger) (*Relay, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	apiURL := strings.TrimRight(cfg.SlackAPIURL, "/") + "/"

	var (
		store   credential.Store
		sweeper Sweeper
	)
	if b.DB != nil {
		ms := credential.NewMongoStore(b.DB, cfg.SessionTTL)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure credential indexes: %w", err)
		}
		store, sweeper = ms, ms
	} else {
		logger.Warn("no database configured, credentials are kept in memory")
		mem := credential.NewMemoryStore(cfg.SessionTTL)
		store, sweeper = mem, mem
	}

	var ledger nonce.Ledger = nonce.NewMemoryLedger()
	if b.Redis != nil {
		ledger = nonce.NewRedisLedger(b.Redis)
	}

	secret := []byte(cfg.SessionSecret)
	sessions := session.NewCookieCarrier(session.SessionCookieName, "/", secret, cfg.CookieSecure)

	srv := server.New(server.Deps{
		Authorizer: oauth.NewExchanger(oauth.Config{
			ClientID:     cfg.SlackClientID,
			ClientSecret: cfg.SlackClientSecret,
			RedirectURI:  cfg.SlackRedirectURI,
			AuthorizeURL: cfg.SlackAuthorizeURL,
			TokenURL:     apiURL + "oauth.v2.access",
			UserScopes:   cfg.SlackUserScopes,
			BotScopes:    cfg.SlackBotScopes,
		}, httpClient, logger.Named("oauth")),
		Guard:        nonce.NewGuard(ledger, cfg.StateTTL),
		StateCarrier: session.NewCookieCarrier(session.StateCookieName, session.CallbackPath, secret, cfg.CookieSecure),
		Resolver:     session.NewResolver(sessions, store, cfg.SlackBotToken, logger.Named("resolver")),
		Store:        store,
		Introspector: session.NewIntrospector(session.NewSlackIdentity(apiURL, httpClient), logger.Named("introspect")),
		Gateway:      chat.NewGateway(chat.NewSlackAPI(apiURL, httpClient), logger.Named("chat")),
		FrontendURL:  cfg.FrontendURL,
		SessionTTL:   cfg.SessionTTL,
		Logger:       logger.Named("http"),
	})

	return &Relay{store: store, sweeper: sweeper, handler: srv.Handler(), logger: logger}, nil
}

// Handler is the relay's HTTP surface.
func (r *Relay) Handler() http.Handler {
	return r.handler
}

// RunSweeper deletes expired records every interval until ctx is done.
func (r *Relay) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.sweeper.Sweep(ctx)
			if err != nil {
				r.logger.Error("credential sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Info("swept expired credentials", zap.Int64("removed", n))
			}
		}
	}
}
