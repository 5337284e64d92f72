package pipeline

import "fmt"

// cultivarLabels names every class the wine model emits.
var cultivarLabels = [...]string{
	0: "Cultivar 1",
	1: "Cultivar 2",
	2: "Cultivar 3",
}

// CultivarLabel returns the display name for a class index. Indices outside the
// table are named "Cultivar <index+1>".
func CultivarLabel(class int) string {
	if class >= 0 && class < len(cultivarLabels) {
		return cultivarLabels[class]
	}
	return fmt.Sprintf("Cultivar %d", class+1)
}
