package main

import (
	"github.com/pathforge/coach-backend/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
