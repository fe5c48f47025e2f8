package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	bscommon "github.com/tranvictor/blockseek/common"
	"github.com/tranvictor/blockseek/resolver"
	"github.com/tranvictor/blockseek/ui"
)

// parseTimestamp accepts unix seconds or an RFC3339 date.
func parseTimestamp(str string) (uint64, error) {
	str = strings.TrimSpace(str)
	if ts, err := strconv.ParseUint(str, 10, 64); err == nil {
		return ts, nil
	}
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return 0, fmt.Errorf("%q is neither unix seconds nor an RFC3339 date", str)
	}
	if t.Unix() < 0 {
		return 0, fmt.Errorf("%q is before the unix epoch", str)
	}
	return uint64(t.Unix()), nil
}

// describeError points at the setting to fix when one is missing.
func describeError(err error) string {
	if setting, ok := bscommon.IsMissingSetting(err); ok {
		return fmt.Sprintf("%s is not set, add it to the environment or the .env file", setting)
	}
	return err.Error()
}

// strategyText highlights answers that needed the fallback.
func strategyText(strategy string) ui.StyledText {
	switch strategy {
	case resolver.STRATEGY_INDEX:
		return ui.StyledText{Text: strategy, Severity: ui.SeveritySuccess}
	case resolver.STRATEGY_CHAIN:
		return ui.StyledText{Text: strategy, Severity: ui.SeverityWarn}
	default:
		return ui.StyledText{Text: "unknown", Severity: ui.SeverityError}
	}
}

var numberPrinter = message.NewPrinter(language.English)

func blockText(block int64) string {
	if block == resolver.NoBlock {
		return "before first block"
	}
	return numberPrinter.Sprintf("%d", block)
}
