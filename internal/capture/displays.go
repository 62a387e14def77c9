package capture

// DisplayInfo describes one attached display.
type DisplayInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// ResolveDisplayIndex maps a display selector onto [0, count). Negative
// selectors count from the last display, so -1 is the last one.
// Out-of-range selectors clamp to the nearest valid index.
func ResolveDisplayIndex(selector, count int) int {
	if count <= 0 {
		return 0
	}
	if selector < 0 {
		selector += count
	}
	if selector < 0 {
		return 0
	}
	if selector >= count {
		return count - 1
	}
	return selector
}
