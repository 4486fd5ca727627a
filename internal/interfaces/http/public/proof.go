package public

import (
	"errors"
	"net/http"

	"github.com/sngm3741/rank-relay/api/internal/infrastructure/upload"
	"github.com/sngm3741/rank-relay/api/internal/interfaces/http/common"
	relayapp "github.com/sngm3741/rank-relay/api/internal/relay/application"
)

func (h *Handler) submitProofHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(common.MultipartMemory); err != nil {
			h.logger.Printf("multipart の解析に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, proofFailureMessage)
			return
		}
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Printf("multipart 一時ファイルの削除に失敗: %v", err)
			}
		}()

		staged, err := h.stageProof(r)
		if err != nil {
			h.logger.Printf("証明ファイルの保存に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, proofFailureMessage)
			return
		}
		defer func() {
			if err := staged.Remove(); err != nil {
				h.logger.Printf("一時ファイルの削除に失敗: path=%s err=%v", staged.Path, err)
			}
		}()

		cmd := relayapp.SubmitProofCommand{
			Minecraft: r.PostFormValue("minecraft"),
			Discord:   r.PostFormValue("discord"),
			Rank:      r.PostFormValue("rank"),
			Method:    r.PostFormValue("method"),
		}
		if staged != nil {
			proof := staged.ProofFile
			cmd.Proof = &proof
		}

		if err := h.proofs.Submit(r.Context(), cmd); err != nil {
			h.logger.Printf("GCash 証明の Webhook 送信に失敗: minecraft=%q err=%v", cmd.Minecraft, err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, proofFailureMessage)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, submitProofResponse{
			Success: true,
			Message: proofSuccessMessage,
		})
	}
}

// stageProof copies the "proof" part to disk. A missing part returns nil
// without error so the service reports it.
func (h *Handler) stageProof(r *http.Request) (*upload.Staged, error) {
	_, header, err := r.FormFile("proof")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if h.uploads == nil {
		return nil, errors.New("upload stager is not configured")
	}
	return h.uploads.Stage(header)
}
