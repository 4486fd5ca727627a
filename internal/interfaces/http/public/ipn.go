package public

import (
	"io"
	"net/http"

	"github.com/sngm3741/rank-relay/api/internal/interfaces/http/common"
	"github.com/sngm3741/rank-relay/api/internal/relay/domain"
)

// paypalIPNHandler acknowledges every callback it could process with 200 OK,
// whether or not it was verified, as the IPN protocol expects.
func (h *Handler) paypalIPNHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, common.MaxIPNRequestBody)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.logger.Printf("IPN 本文の読み込みに失敗: %v", err)
			common.WriteText(h.logger, w, http.StatusInternalServerError, ipnFailureMessage)
			return
		}

		cb := domain.ParsePaymentCallback(body)
		outcome, err := h.payments.HandleNotification(r.Context(), cb)
		if err != nil {
			h.logger.Printf("IPN 処理でエラー: txn_id=%s err=%v", cb.TxnID(), err)
			common.WriteText(h.logger, w, http.StatusInternalServerError, ipnFailureMessage)
			return
		}

		h.logger.Printf("IPN 処理完了: txn_id=%s outcome=%s", cb.TxnID(), outcome)
		common.WriteText(h.logger, w, http.StatusOK, ipnAck)
	}
}
