// Package revision exposes the revision, version history, analysis and
// auto-publish operations over HTTP.
package revision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/handler/http/pathutil"
	"draftdesk/internal/handler/http/respond"
	"draftdesk/internal/observability/logging"
	"draftdesk/internal/usecase/autopublish"
	"draftdesk/internal/usecase/quality"
	revisionUC "draftdesk/internal/usecase/revision"
	"draftdesk/internal/usecase/strategy"
	"draftdesk/internal/usecase/versioning"
)

// Reviser runs revisions.
type Reviser interface {
	Revise(ctx context.Context, articleID int64, req revisionUC.Request, progress revisionUC.ProgressFunc) (*revisionUC.Result, error)
}

// VersionService reads and restores version history.
type VersionService interface {
	History(ctx context.Context, articleID int64) ([]*entity.Version, error)
	Restore(ctx context.Context, articleID, versionID int64) (*entity.Version, error)
}

// ArticleReader loads articles. A missing article is (nil, nil).
type ArticleReader interface {
	Get(ctx context.Context, id int64) (*entity.Article, error)
}

// PublishGate evaluates and performs auto-publishing.
type PublishGate interface {
	Check(ctx context.Context, articleID int64, p autopublish.Policy) (autopublish.EligibilityResult, error)
	MarkReady(ctx context.Context, articleID int64, p autopublish.Policy) (*entity.Article, error)
	RunCycle(ctx context.Context, p autopublish.Policy) (*autopublish.CycleResult, error)
}

// Handler serves the article routes. Policy is read on every request so a
// reloaded policy takes effect without restarting.
type Handler struct {
	Reviser    Reviser
	Versions   VersionService
	Articles   ArticleReader
	Selector   *strategy.Selector
	Gate       PublishGate
	Policy     func() autopublish.Policy
	Thresholds quality.Thresholds
	// CycleTimeout bounds POST /autopublish/run; zero means no extra bound.
	CycleTimeout time.Duration
}

// Revise handles POST /articles/{id}/revisions.
// @Summary      記事リビジョン実行
// @Description  選択した戦略で記事を書き直し、新しいバージョンを保存します。進捗イベントはレスポンスに含まれます。
// @Tags         revisions
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "記事ID"
// @Param        request  body  revisionUC.Request   true  "リビジョンリクエスト"
// @Success      201 {object} ReviseResponse "保存されたバージョンと進捗"
// @Failure      400 {object} ReviseFailure "Bad request - invalid ID, body or strategy"
// @Failure      404 {object} ReviseFailure "Not found - article not found"
// @Failure      409 {object} ReviseFailure "Conflict - revision already in progress"
// @Failure      502 {object} ReviseFailure "Every generation provider failed"
// @Failure      504 {object} ReviseFailure "Deadline exceeded"
// @Failure      500 {object} ReviseFailure "サーバーエラー"
// @Router       /articles/{id}/revisions [post]
func (h *Handler) Revise(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req revisionUC.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if _, err := strategy.ParseID(string(req.Strategy)); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.TargetWordCount < 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("target_word_count must be positive"))
		return
	}

	var events []revisionUC.Progress
	res, err := h.Reviser.Revise(r.Context(), id, req, func(p revisionUC.Progress) {
		events = append(events, p)
	})
	if events == nil {
		events = []revisionUC.Progress{}
	}
	if err != nil {
		code := statusFor(err)
		failure := ReviseFailure{Error: publicMessage(code, err), Progress: events}
		var se *revisionUC.StageError
		if errors.As(err, &se) {
			failure.Stage = string(se.Stage)
		}
		if code >= http.StatusInternalServerError {
			logging.FromContext(r.Context()).Error("revision request failed",
				"article_id", id,
				"error", respond.SanitizeError(err))
		}
		respond.JSON(w, code, failure)
		return
	}
	respond.JSON(w, http.StatusCreated, ReviseResponse{Result: res, Progress: events})
}

// ListVersions handles GET /articles/{id}/versions. Content is included
// only with ?content=true.
// @Summary      バージョン履歴取得
// @Description  記事のバージョン履歴を新しい順に返します
// @Tags         versions
// @Produce      json
// @Param        id       path   int   true   "記事ID"
// @Param        content  query  bool  false  "本文を含める"
// @Success      200 {array}  VersionDTO "バージョン一覧"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	versions, err := h.Versions.History(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	withContent := r.URL.Query().Get("content") == "true"
	out := make([]VersionDTO, 0, len(versions))
	for _, v := range versions {
		out = append(out, toVersionDTO(v, withContent))
	}
	respond.JSON(w, http.StatusOK, out)
}

// RestoreVersion handles POST /articles/{id}/versions/{versionID}/restore.
// @Summary      バージョン復元
// @Description  指定したバージョンを現在のバージョンに戻し、記事本文へ反映します
// @Tags         versions
// @Produce      json
// @Param        id         path  int  true  "記事ID"
// @Param        versionID  path  int  true  "バージョンID"
// @Success      200 {object} VersionDTO "復元されたバージョン"
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      404 {string} string "Not found - version does not belong to article"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/versions/{versionID}/restore [post]
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	versionID, err := pathutil.PathID(r, "versionID")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("version: %w", err))
		return
	}

	v, err := h.Versions.Restore(r.Context(), id, versionID)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toVersionDTO(v, true))
}

// Analyze handles GET /articles/{id}/analysis.
// @Summary      記事品質分析
// @Description  品質レポート、推奨戦略、見出しとリンクのアウトラインを返します
// @Tags         analysis
// @Produce      json
// @Param        id  path  int  true  "記事ID"
// @Success      200 {object} AnalysisResponse "分析結果"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/analysis [get]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadArticle(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, AnalysisResponse{
		ArticleID: a.ID,
		Quality:   quality.Evaluate(a.Content, a.FAQs, h.Thresholds),
		Strategy:  h.Selector.Analyze(a),
		Outline:   quality.ExtractOutline(a.Content),
	})
}

// Eligibility handles GET /articles/{id}/eligibility.
// @Summary      自動公開可否判定
// @Description  現在のポリシーで記事が自動公開できるかを判定し、すべての理由を返します
// @Tags         autopublish
// @Produce      json
// @Param        id  path  int  true  "記事ID"
// @Success      200 {object} autopublish.EligibilityResult "判定結果"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/eligibility [get]
func (h *Handler) Eligibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.Gate.Check(r.Context(), id, h.Policy())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// MarkReady handles POST /articles/{id}/ready.
// @Summary      公開準備完了に変更
// @Description  記事を ready_to_publish にし、未設定なら自動公開期限を設定します
// @Tags         autopublish
// @Produce      json
// @Param        id  path  int  true  "記事ID"
// @Success      200 {object} ArticleStateDTO "更新後の記事状態"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/ready [post]
func (h *Handler) MarkReady(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.Gate.MarkReady(r.Context(), id, h.Policy())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, toArticleStateDTO(a))
}

// RunCycle handles POST /autopublish/run.
// @Summary      自動公開サイクル実行
// @Description  期限を過ぎた候補記事を判定し、条件を満たすものを公開します
// @Tags         autopublish
// @Produce      json
// @Success      200 {object} autopublish.CycleResult "サイクル結果"
// @Failure      504 {string} string "Deadline exceeded"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /autopublish/run [post]
func (h *Handler) RunCycle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.CycleTimeout)
		defer cancel()
	}
	res, err := h.Gate.RunCycle(ctx, h.Policy())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) loadArticle(w http.ResponseWriter, r *http.Request) (*entity.Article, bool) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	a, err := h.Articles.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	if a == nil {
		respond.SafeError(w, http.StatusNotFound, fmt.Errorf("article %d: %w", id, entity.ErrNotFound))
		return nil, false
	}
	return a, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, versioning.ErrInvalidArticleID),
		errors.Is(err, strategy.ErrUnknownStrategy),
		errors.Is(err, entity.ErrValidationFailed),
		errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, revisionUC.ErrRevisionInProgress):
		return http.StatusConflict
	case errors.Is(err, revisionUC.ErrGenerationFailed),
		errors.Is(err, revisionUC.ErrHumanizationFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// publicMessage is the error text shown to the client. Provider failures
// name the failed step only; provider messages may echo credentials.
func publicMessage(code int, err error) string {
	switch {
	case code < http.StatusInternalServerError:
		return err.Error()
	case errors.Is(err, revisionUC.ErrGenerationFailed):
		return revisionUC.ErrGenerationFailed.Error()
	case errors.Is(err, revisionUC.ErrHumanizationFailed):
		return revisionUC.ErrHumanizationFailed.Error()
	case code == http.StatusGatewayTimeout:
		return "revision timed out"
	}
	return "internal server error"
}
