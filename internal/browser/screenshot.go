package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"fbgroup-notifier/internal/logging"
)

var logger = logging.GetModuleLogger("browser")

// ScreenshotDebugger saves page screenshots when something goes wrong
type ScreenshotDebugger struct {
	outputDir string
}

func NewScreenshotDebugger(dir string) *ScreenshotDebugger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.WithError(err).Warnf("⚠️ Could not create screenshot dir %s", dir)
	}
	return &ScreenshotDebugger{
		outputDir: dir,
	}
}

// Capture writes a full page screenshot named after name and returns its path.
func (s *ScreenshotDebugger) Capture(page playwright.Page, name string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		logger.WithError(err).Warn("⚠️ Failed to capture screenshot")
		return "", err
	}

	logger.Infof("📸 Screenshot saved: %s", path)
	return path, nil
}
