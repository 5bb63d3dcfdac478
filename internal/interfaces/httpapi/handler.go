package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/matchday-io/matchday/internal/domain/playerstats"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	"github.com/matchday-io/matchday/internal/domain/wallet"
	"github.com/matchday-io/matchday/internal/platform/cache"
	"github.com/matchday-io/matchday/internal/platform/logging"
	"github.com/matchday-io/matchday/internal/usecase"
)

type Handler struct {
	finalizationService *usecase.FinalizationService
	settlementService   *usecase.SettlementService
	backlogService      *usecase.BacklogService
	snapshots           snapshot.Store
	walletRepo          wallet.Repository
	statsRepo           playerstats.Repository
	caches              *cache.Store
	logger              *logging.Logger
	validator           *validator.Validate
	now                 func() time.Time
}

func NewHandler(
	finalizationService *usecase.FinalizationService,
	settlementService *usecase.SettlementService,
	backlogService *usecase.BacklogService,
	snapshots snapshot.Store,
	walletRepo wallet.Repository,
	statsRepo playerstats.Repository,
	caches *cache.Store,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		finalizationService: finalizationService,
		settlementService:   settlementService,
		backlogService:      backlogService,
		snapshots:           snapshots,
		walletRepo:          walletRepo,
		statsRepo:           statsRepo,
		caches:              caches,
		logger:              logger,
		validator:           validator.New(),
		now:                 time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type finalizeRequest struct {
	HomeTeam   string `json:"home_team" validate:"required"`
	AwayTeam   string `json:"away_team" validate:"required"`
	SettleBets bool   `json:"settle_bets"`
}

type stepResultDTO struct {
	Step    string `json:"step"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type finalizeReportDTO struct {
	HomeTeam string          `json:"home_team"`
	AwayTeam string          `json:"away_team"`
	Steps    []stepResultDTO `json:"steps"`
}

// FinalizeMatch runs the full finalization pipeline. The response is
// always 200 with a per-step report; individual step failures are
// reported inline, not as an HTTP error.
func (h *Handler) FinalizeMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeMatch")
	defer span.End()

	var req finalizeRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	report := h.finalizationService.Finalize(ctx, req.HomeTeam, req.AwayTeam, req.SettleBets)

	out := finalizeReportDTO{HomeTeam: report.Home, AwayTeam: report.Away}
	for _, step := range report.Steps {
		dto := stepResultDTO{Step: step.Step, Skipped: step.Skipped}
		if step.Err != nil {
			dto.Error = step.Err.Error()
		}
		out.Steps = append(out.Steps, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

// SettleBets sweeps every open bet whose match kickoff has passed.
func (h *Handler) SettleBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleBets")
	defer span.End()

	changed, err := h.settlementService.SettleOpen(ctx, h.now())
	if err != nil {
		h.logger.ErrorContext(ctx, "settle open bets failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"settled": changed})
}

// FinalizeBacklog replays finalization for finished matches whose
// aggregation never completed.
func (h *Handler) FinalizeBacklog(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeBacklog")
	defer span.End()

	replayed, err := h.backlogService.FinalizeBacklog(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "finalize backlog failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"replayed": replayed})
}

type snapshotDTO struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GetSnapshot serves one read-model document, through the TTL cache
// when it is enabled.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	key := r.PathValue("key")
	switch key {
	case snapshot.KeyResults, snapshot.KeySchedule, snapshot.KeyLeagueTable, snapshot.KeyStatsTable:
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown snapshot key %q", usecase.ErrNotFound, key))
		return
	}

	h.serveSnapshot(ctx, w, key)
}

// GetLeagueTable serves the standings read model.
func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTable")
	defer span.End()

	h.serveSnapshot(ctx, w, snapshot.KeyLeagueTable)
}

// GetSchedule serves the upcoming-fixtures read model.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSchedule")
	defer span.End()

	h.serveSnapshot(ctx, w, snapshot.KeySchedule)
}

func (h *Handler) serveSnapshot(ctx context.Context, w http.ResponseWriter, key string) {
	value, err := h.caches.GetOrLoad(ctx, "snapshot:"+key, func(ctx context.Context) (any, error) {
		snap, exists, err := h.snapshots.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: snapshot %q not built yet", usecase.ErrNotFound, key)
		}
		return snap, nil
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	snap := value.(snapshot.Snapshot)
	writeSuccess(ctx, w, http.StatusOK, snapshotDTO{
		Key:       snap.Key,
		Payload:   json.RawMessage(snap.Payload),
		UpdatedAt: snap.UpdatedAt,
	})
}

type walletDTO struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWallet")
	defer span.End()

	userID := r.PathValue("userID")
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput))
		return
	}

	item, exists, err := h.walletRepo.GetByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get wallet failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: wallet for user %q", usecase.ErrNotFound, userID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, walletDTO{
		UserID:    item.UserID,
		Balance:   item.Balance,
		UpdatedAt: item.UpdatedAt,
	})
}

type playerStatsDTO struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Tournament  string `json:"tournament"`
	Matches     int    `json:"matches"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	YellowCards int    `json:"yellow_cards"`
	RedCards    int    `json:"red_cards"`
	Points      int    `json:"points"`
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	playerID := r.PathValue("id")
	if playerID == "" {
		writeError(ctx, w, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput))
		return
	}

	item, exists, err := h.statsRepo.GetByPlayer(ctx, playerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get player stats failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: stats for player %q", usecase.ErrNotFound, playerID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatsDTO{
		PlayerID:    item.PlayerID,
		PlayerName:  item.PlayerName,
		Tournament:  item.Tournament,
		Matches:     item.Matches,
		Goals:       item.Goals,
		Assists:     item.Assists,
		YellowCards: item.YellowCards,
		RedCards:    item.RedCards,
		Points:      item.Points(),
	})
}
