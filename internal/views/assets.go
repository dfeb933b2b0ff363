package views

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-io/helpdesk-web/internal/format"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

type volumeRow struct {
	Volume   models.BitLockerVolume
	Status   format.Status
	Progress string
}

// BitLocker shows the encryption state of an asset's volumes.
func (h *Handlers) BitLocker(c *gin.Context) {
	assetID := strings.TrimSpace(c.Param("id"))
	data := gin.H{"Title": "BitLocker"}

	report, err := h.Client.BitLocker.Volumes(h.scope(c), assetID)
	if err != nil {
		h.loadFailed(c, "pages/assets/bitlocker.html", data, err)
		return
	}

	rows := make([]volumeRow, 0, len(report.Volumes))
	for _, v := range report.Volumes {
		rows = append(rows, volumeRow{
			Volume:   v,
			Status:   format.BitLockerStatus(string(v.ProtectionStatus)),
			Progress: format.EncryptionProgress(v.EncryptionPercentage),
		})
	}
	data["Report"] = report
	data["Volumes"] = rows
	h.render(c, http.StatusOK, "pages/assets/bitlocker.html", data)
}
