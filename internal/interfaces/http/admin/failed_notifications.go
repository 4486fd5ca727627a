package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/sngm3741/rank-relay/api/internal/interfaces/http/common"
	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

func (h *Handler) failedNotificationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), common.DefaultFailureListLimit)
		limit = common.ClampInt(limit, 1, common.MaxFailureListLimit)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failures, err := h.failures.Recent(ctx, limit)
		if err != nil {
			h.logger.Printf("admin failed notification list fetch failed: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "配信失敗一覧の取得に失敗しました")
			return
		}

		if op, ok := common.OperatorFromContext(r.Context()); ok {
			h.logger.Printf("配信失敗一覧を参照: operator=%s count=%d", op.Subject, len(failures))
		}

		items := make([]failedNotificationResponse, 0, len(failures))
		for _, failure := range failures {
			items = append(items, failedNotificationToResponse(failure))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, failedNotificationListResponse{Items: items})
	}
}

func failedNotificationToResponse(f domain.FailedNotification) failedNotificationResponse {
	return failedNotificationResponse{
		ID:        f.ID,
		Source:    f.Source,
		Reference: f.Reference,
		Payload:   f.Payload,
		Error:     f.Error,
		Attempts:  f.Attempts,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
	}
}
