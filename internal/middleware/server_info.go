package middleware

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// ServerInfo mostra as informações do servidor na subida
func ServerInfo(port, storeBackend string, logger *zap.Logger) {
	hostname, _ := os.Hostname()

	goVersion := runtime.Version()
	numCPU := runtime.NumCPU()

	startTime := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println("")
	fmt.Println("🚀 " + boldColor + "GreenStock Service API" + resetColor)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("📅 Started at: " + startTime)
	fmt.Println("🌐 Server URL: " + cyanColor + "http://localhost:" + port + resetColor)
	fmt.Println("💻 Hostname: " + hostname)
	fmt.Println("🔧 Go Version: " + goVersion)
	fmt.Println("⚡ CPU Cores: " + fmt.Sprintf("%d", numCPU))
	fmt.Println("")
	fmt.Println("📊 " + boldColor + "Available Endpoints:" + resetColor)
	fmt.Println("   GET  " + greenColor + "/" + resetColor + "               - API Information")
	fmt.Println("   GET  " + greenColor + "/health" + resetColor + "          - Health Check")
	fmt.Println("   *    " + greenColor + "/api/v1/..." + resetColor + "      - Inventory API")
	fmt.Println("")
	fmt.Println("⚙️  " + boldColor + "Environment:" + resetColor)
	fmt.Println("   🗄️  Store backend: " + storeBackend)
	fmt.Println("   📝 Logging: Structured (Zap)")
	fmt.Println("")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("✨ " + boldColor + "Server is ready to handle requests!" + resetColor)
	fmt.Println("")

	logger.Info("Server started successfully",
		zap.String("port", port),
		zap.String("store_backend", storeBackend),
		zap.String("hostname", hostname),
		zap.String("go_version", goVersion),
		zap.Int("cpu_cores", numCPU),
		zap.String("start_time", startTime),
	)
}
