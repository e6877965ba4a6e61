package internal

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

type HealthStatus struct {
	Status        string  `json:"status"`
	Server        string  `json:"server"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	RAMBytes      uint64  `json:"ram_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
}

// HealthHandler reports liveness plus the process's own memory and CPU
// usage, so an operator can spot a leaking or spinning relay without any
// external monitoring stack.
func HealthHandler(corsOrigin string) http.HandlerFunc {
	started := time.Now()
	proc, _ := process.NewProcess(int32(os.Getpid()))

	return func(w http.ResponseWriter, r *http.Request) {
		SetCORSHeaders(w, corsOrigin)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		status := HealthStatus{
			Status:        "ok",
			Server:        "go",
			UptimeSeconds: int64(time.Since(started).Seconds()),
		}
		if proc != nil {
			if mem, err := proc.MemoryInfo(); err == nil {
				status.RAMBytes = mem.RSS
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				status.CPUPercent = cpu
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	}
}

func SetCORSHeaders(w http.ResponseWriter, origin string) {
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
