package relationships

import (
	"net/http"

	"github.com/kinnected/kinnected/internal/app/system/jsonutil"
	"github.com/kinnected/kinnected/internal/app/system/kinship"
)

// ServeLabels returns the relation_type vocabulary in lowercase. The
// capitalized form of each label is accepted as well.
func (h *Handler) ServeLabels(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, http.StatusOK, kinship.Labels())
}
