package main

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scenecast/internal/queue"
)

var titleCaser = cases.Title(language.English)

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid job id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// stepLabel renders a pipeline step name for humans, e.g.
// "video_direction" becomes "Video Direction".
func stepLabel(step string) string {
	step = strings.TrimSpace(step)
	if step == "" {
		return ""
	}
	if strings.EqualFold(step, "seo") {
		return "SEO"
	}
	return titleCaser.String(strings.ReplaceAll(step, "_", " "))
}

func stepNames() []string {
	order := queue.StepOrder()
	names := make([]string, 0, len(order))
	for _, step := range order {
		names = append(names, string(step))
	}
	return names
}
