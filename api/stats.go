package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/process"
)

// Health reports process-level stats (memory, CPU, OS status) so an
// operator can see the server breathing without attaching anything.
func (h *Handler) Health(c *gin.Context) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}
	status, err := p.Status()
	if err != nil {
		h.writeError(c, err, http.StatusUnprocessableEntity)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"pid":            os.Getpid(),
		"rss_bytes":      memInfo.RSS,
		"cpu_percent":    cpuPercent,
		"process_status": status,
	})
}
