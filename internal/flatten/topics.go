package flatten

import (
	"fmt"
	"strings"
)

// topicJoin separates fragments within each derived topic column.
const topicJoin = "; "

// BuildTopicsColumns summarizes an OpenAlex topics list into three columns:
// a "Name (count)" display column, the subfield display names, and the domain
// display names. Fragment order follows the input list; entries that are not
// objects are skipped, and an entry missing one of the names contributes
// nothing to that column without shifting the others.
func BuildTopicsColumns(topics any) (display, subfields, domains string) {
	list, ok := topics.([]any)
	if !ok {
		return "", "", ""
	}

	var disp, sub, dom []string
	for _, el := range list {
		t, ok := el.(map[string]any)
		if !ok {
			continue
		}

		if name, _ := t["display_name"].(string); name != "" {
			if count := Stringify(t["count"]); count != "" {
				disp = append(disp, fmt.Sprintf("%s (%s)", name, count))
			} else {
				disp = append(disp, name)
			}
		}
		if sf := nestedDisplayName(t, "subfield"); sf != "" {
			sub = append(sub, sf)
		}
		if d := nestedDisplayName(t, "domain"); d != "" {
			dom = append(dom, d)
		}
	}

	return strings.Join(disp, topicJoin), strings.Join(sub, topicJoin), strings.Join(dom, topicJoin)
}

func nestedDisplayName(t map[string]any, key string) string {
	m, ok := t[key].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := m["display_name"].(string)
	return name
}
