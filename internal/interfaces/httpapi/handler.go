package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/lapollita/polla-api/internal/domain/match"
	"github.com/lapollita/polla-api/internal/domain/pool"
	"github.com/lapollita/polla-api/internal/domain/prediction"
	"github.com/lapollita/polla-api/internal/platform/logging"
	"github.com/lapollita/polla-api/internal/usecase"
)

type Handler struct {
	matchService      *usecase.MatchService
	poolService       *usecase.PoolService
	predictionService *usecase.PredictionService
	rankingService    *usecase.RankingService
	sessionService    *usecase.SessionService
	rescoreService    *usecase.RescoreService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	poolService *usecase.PoolService,
	predictionService *usecase.PredictionService,
	rankingService *usecase.RankingService,
	sessionService *usecase.SessionService,
	rescoreService *usecase.RescoreService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:      matchService,
		poolService:       poolService,
		predictionService: predictionService,
		rankingService:    rankingService,
		sessionService:    sessionService,
		rescoreService:    rescoreService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type teamDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	IconURL   string `json:"iconUrl"`
}

type matchDTO struct {
	ID             int64   `json:"id"`
	LeagueID       int64   `json:"leagueId"`
	LeagueName     string  `json:"leagueName"`
	LeagueShortcut string  `json:"leagueShortcut"`
	Season         string  `json:"season"`
	KickoffAtUTC   string  `json:"kickoffAtUtc"`
	HomeTeam       teamDTO `json:"homeTeam"`
	AwayTeam       teamDTO `json:"awayTeam"`
	IsFinished     bool    `json:"isFinished"`
	FinalScore     string  `json:"finalScore,omitempty"`
	LastUpdatedUTC string  `json:"lastUpdatedUtc,omitempty"`
}

type tournamentDTO struct {
	LeagueID int64  `json:"leagueId"`
	Name     string `json:"name"`
	Shortcut string `json:"shortcut"`
	Season   string `json:"season"`
}

type poolDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Tournament     string   `json:"tournament"`
	LeagueID       int64    `json:"leagueId"`
	LeagueShortcut string   `json:"leagueShortcut"`
	Season         string   `json:"season"`
	AdminID        string   `json:"adminId"`
	Participants   []string `json:"participants"`
	Notes          string   `json:"notes,omitempty"`
	InviteCode     string   `json:"inviteCode"`
	CreatedAtUTC   string   `json:"createdAtUtc"`
}

type predictionDTO struct {
	MatchID     int64  `json:"matchId"`
	Home        *int   `json:"home"`
	Away        *int   `json:"away"`
	Display     string `json:"display"`
	FinalResult string `json:"finalResult,omitempty"`
	Points      int    `json:"points"`
}

type standingDTO struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Total    int    `json:"total"`
}

type standingsDTO struct {
	Items      []standingDTO `json:"items"`
	CallerRank int           `json:"callerRank"`
}

type sessionMatchDTO struct {
	Match      matchDTO       `json:"match"`
	Prediction *predictionDTO `json:"prediction,omitempty"`
}

type sessionDTO struct {
	State   string            `json:"state"`
	PoolID  string            `json:"poolId"`
	UserID  string            `json:"userId"`
	Total   int               `json:"total"`
	Matches []sessionMatchDTO `json:"matches"`
}

func teamToDTO(v match.Team) teamDTO {
	return teamDTO{
		ID:        v.ID,
		Name:      v.Name,
		ShortName: v.ShortName,
		IconURL:   v.IconURL,
	}
}

func matchToDTO(v match.Match) matchDTO {
	item := matchDTO{
		ID:             v.ID,
		LeagueID:       v.LeagueID,
		LeagueName:     v.LeagueName,
		LeagueShortcut: v.LeagueShortcut,
		Season:         v.Season,
		KickoffAtUTC:   v.KickoffAt.UTC().Format(time.RFC3339),
		HomeTeam:       teamToDTO(v.HomeTeam),
		AwayTeam:       teamToDTO(v.AwayTeam),
		IsFinished:     v.IsFinished,
	}
	if final, ok := v.FinalResult(); ok {
		item.FinalScore = prediction.Display(&final.HomeGoals, &final.AwayGoals)
	}
	if !v.LastUpdatedAt.IsZero() {
		item.LastUpdatedUTC = v.LastUpdatedAt.UTC().Format(time.RFC3339)
	}
	return item
}

func tournamentToDTO(v usecase.Tournament) tournamentDTO {
	return tournamentDTO{
		LeagueID: v.LeagueID,
		Name:     v.Name,
		Shortcut: v.Shortcut,
		Season:   v.Season,
	}
}

func poolToDTO(v pool.Pool) poolDTO {
	return poolDTO{
		ID:             v.ID,
		Name:           v.Name,
		Tournament:     v.Tournament,
		LeagueID:       v.LeagueRefID,
		LeagueShortcut: v.LeagueShortcut,
		Season:         v.Season,
		AdminID:        v.AdminID,
		Participants:   append([]string(nil), v.Participants...),
		Notes:          v.Notes,
		InviteCode:     v.InviteCode,
		CreatedAtUTC:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	return predictionDTO{
		MatchID:     v.MatchID,
		Home:        v.Home,
		Away:        v.Away,
		Display:     v.SavedDisplay,
		FinalResult: v.FinalResult,
		Points:      v.Points,
	}
}

func sessionToDTO(v usecase.SessionView) sessionDTO {
	rows := make([]sessionMatchDTO, 0, len(v.Matches))
	for _, row := range v.Matches {
		item := sessionMatchDTO{Match: matchToDTO(row.Match)}
		if row.HasPrediction {
			p := predictionToDTO(row.Prediction)
			item.Prediction = &p
		}
		rows = append(rows, item)
	}

	return sessionDTO{
		State:   string(v.State),
		PoolID:  v.PoolID,
		UserID:  v.UserID,
		Total:   v.Total,
		Matches: rows,
	}
}
