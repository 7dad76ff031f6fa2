package main

import (
	"fmt"
	"os"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/app"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/envutil"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	port := envutil.Str("PORT", "8080")
	a.Log.Info("Server listening", "port", port)
	if err := a.Run(":" + port); err != nil {
		a.Log.Error("Server failed", "error", err)
	}
}
