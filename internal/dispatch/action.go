package dispatch

type Action int

const (
	ActionUnknown Action = iota
	ActionExecute
	ActionPersist
	ActionInfo
	ActionGetShortcutDetails
	ActionGetDeletedShortcutDetails
	ActionNewID
	ActionCreateShortcuts
	ActionUpdateShortcuts
	ActionDeleteShortcuts
	ActionExportShortcuts
	ActionImportShortcuts
	ActionUpdateRhythm
	ActionClearDeleted
	ActionSortShortcuts
)

var actionNames = map[Action]string{
	ActionExecute:                   "execute",
	ActionPersist:                   "persist",
	ActionInfo:                      "info",
	ActionGetShortcutDetails:        "get_shortcut_details",
	ActionGetDeletedShortcutDetails: "get_deleted_shortcut_details",
	ActionNewID:                     "new_id",
	ActionCreateShortcuts:           "create_shortcuts",
	ActionUpdateShortcuts:           "update_shortcuts",
	ActionDeleteShortcuts:           "delete_shortcuts",
	ActionExportShortcuts:           "export_shortcuts",
	ActionImportShortcuts:           "import_shortcuts",
	ActionUpdateRhythm:              "update_rhythm",
	ActionClearDeleted:              "clear_deleted",
	ActionSortShortcuts:             "sort_shortcuts",
}

var actionsByName = func() map[string]Action {
	out := make(map[string]Action, len(actionNames))
	for action, name := range actionNames {
		out[name] = action
	}
	return out
}()

// ParseAction matches the wire name exactly; anything else is ActionUnknown.
func ParseAction(name string) Action {
	if action, ok := actionsByName[name]; ok {
		return action
	}
	return ActionUnknown
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Actions lists every known action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionNames))
	for a := ActionExecute; a <= ActionSortShortcuts; a++ {
		out = append(out, a)
	}
	return out
}

// Mutates reports whether the action can change the persisted sheet.
func (a Action) Mutates() bool {
	switch a {
	case ActionExecute, ActionCreateShortcuts, ActionUpdateShortcuts, ActionDeleteShortcuts,
		ActionImportShortcuts, ActionClearDeleted, ActionSortShortcuts:
		return true
	default:
		return false
	}
}
