package webhook

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/matchday-io/matchday/internal/platform/logging"
	"github.com/matchday-io/matchday/internal/platform/resilience"
	"github.com/matchday-io/matchday/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

// Config describes the downstream statistics endpoint.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
	Retries int
	Circuit resilience.CircuitBreakerConfig
}

// Emitter pushes finalized match statistics to an external HTTP
// consumer. Deliveries are fire-and-forget from the orchestrator's
// point of view; a tripped circuit short-circuits quickly instead of
// stalling finalization on a dead endpoint.
type Emitter struct {
	client  *fasthttp.Client
	url     string
	token   string
	retries int
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewEmitter(cfg Config, logger *logging.Logger) *Emitter {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	circuit := resilience.NormalizeCircuitBreakerConfig(cfg.Circuit)

	return &Emitter{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.Token),
		retries: cfg.Retries,
		breaker: resilience.NewCircuitBreaker(
			circuit.FailureThreshold,
			circuit.OpenTimeout,
			circuit.HalfOpenMaxReq,
		),
		logger: logger,
	}
}

type statsPayload struct {
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
	Winner    string `json:"winner"`
	Penalty   bool   `json:"penalty"`
	RedCard   bool   `json:"red_card"`
	SentAt    int64  `json:"sent_at"`
}

// PushMatchStats implements usecase.StatsIntegrator.
func (e *Emitter) PushMatchStats(ctx context.Context, home, away string, outcome usecase.Outcome) error {
	if e.url == "" {
		return errors.New("webhook url is not configured")
	}
	if err := e.breaker.Allow(); err != nil {
		return errors.Wrap(err, "webhook circuit")
	}

	payload := statsPayload{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: outcome.HomeGoals,
		AwayGoals: outcome.AwayGoals,
		Winner:    outcome.Winner(),
		Penalty:   outcome.Penalty,
		RedCard:   outcome.RedCard,
		SentAt:    time.Now().UnixMilli(),
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal stats payload")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(body)

	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if ctx.Err() != nil {
			e.breaker.RecordFailure()
			return errors.Wrap(ctx.Err(), "webhook push cancelled")
		}
		if lastErr = e.post(buf.B); lastErr == nil {
			e.breaker.RecordSuccess()
			return nil
		}
		e.logger.WarnContext(ctx, "webhook push attempt failed",
			"attempt", attempt+1, "home", home, "away", away, "error", lastErr)
	}

	e.breaker.RecordFailure()
	return errors.Wrapf(lastErr, "push match stats for %s vs %s", home, away)
}

func (e *Emitter) post(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(e.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	req.SetBody(body)

	if err := e.client.Do(req, resp); err != nil {
		return errors.Wrap(err, "webhook request")
	}
	if resp.StatusCode()/100 != 2 {
		return errors.Newf("webhook status %d: %s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
