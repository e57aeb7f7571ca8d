package catalogs

import "strings"

// Item is a carried item stack as reported by the engine.
type Item struct {
	Type  string   `json:"type"`
	Label string   `json:"label,omitempty"`
	Lore  []string `json:"lore,omitempty"`
}

func (i Item) Empty() bool { return strings.TrimSpace(i.Type) == "" }

// ToolSpec identifies the designated linking tool.
type ToolSpec struct {
	Item  string
	Label string
}

// Matches reports whether it is the designated tool: same item type and the
// same display label once formatting codes are stripped, ignoring case.
func (s ToolSpec) Matches(it Item) bool {
	if it.Empty() || !strings.EqualFold(strings.TrimSpace(it.Type), s.Item) {
		return false
	}
	label := strings.TrimSpace(StripFormatting(it.Label))
	return label != "" && strings.EqualFold(label, strings.TrimSpace(s.Label))
}

// MakeTool builds the item handed out by the give command.
func (s ToolSpec) MakeTool() Item {
	return Item{
		Type:  strings.ToUpper(s.Item),
		Label: "§b" + s.Label,
		Lore: []string{
			"§7Sneak-right-click an agent to select",
			"§7Right-click a bed to set HOME",
			"§7Right-click a workstation to set JOB",
		},
	}
}

// StripFormatting removes "§x" style formatting codes.
func StripFormatting(s string) string {
	if !strings.ContainsRune(s, '§') {
		return s
	}
	var b strings.Builder
	skip := false
	for _, r := range s {
		if skip {
			skip = false
			continue
		}
		if r == '§' {
			skip = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
