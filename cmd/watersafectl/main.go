package main

import (
	"os"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.WithError(err).Error("watersafectl: команда завершилась с ошибкой")
		os.Exit(1)
	}
}
