package services

import (
	"os"
	"testing"

	"github.com/Willysmile/cash-stuffing/internal/logger"
)

// missingID is a well-formed id that no fixture ever receives.
const missingID = "01900000-0000-7000-8000-000000000000"

func TestMain(m *testing.M) {
	logger.Init("test", "")
	os.Exit(m.Run())
}
