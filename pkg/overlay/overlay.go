// Package overlay turns pointer events on subtitle words into intents for the
// playback session and the host editor. Nothing here touches a toolkit.
package overlay

import (
	"subplay/pkg/layout"
)

type Kind int

const (
	Pause Kind = iota
	Play
	Highlight
	Unhighlight
	ShowPopup
	HidePopup
	HostCommand
)

func (k Kind) String() string {
	switch k {
	case Pause:
		return "pause"
	case Play:
		return "play"
	case Highlight:
		return "highlight"
	case Unhighlight:
		return "unhighlight"
	case ShowPopup:
		return "show-popup"
	case HidePopup:
		return "hide-popup"
	case HostCommand:
		return "host-command"
	}
	return "unknown"
}

type Button int

const (
	LeftButton Button = iota
	RightButton
	MiddleButton
)

// Command is an interactive command invoked in the host editor.
type Command struct {
	Name string
	Args []any
}

type Intent struct {
	Kind    Kind
	Index   int // word index for Highlight/Unhighlight
	Command Command
}

// Commands names the host commands the overlay triggers.
type Commands struct {
	Lookup  string
	Explain string
}

func DefaultCommands() Commands {
	return Commands{
		Lookup:  "video-player-lookup",
		Explain: "video-player-explain-sentence",
	}
}

func valid(l layout.Layout, index int) bool {
	return index >= 0 && index < len(l.Words)
}

// Hover handles the pointer entering a word: playback pauses, the word is
// highlighted and the host is asked to look it up at the pointer x and the
// top of the subtitle block.
func Hover(l layout.Layout, index int, pointerX float64, cmds Commands) []Intent {
	if !valid(l, index) {
		return nil
	}
	return []Intent{
		{Kind: Pause},
		{Kind: Highlight, Index: index},
		{Kind: ShowPopup},
		{Kind: HostCommand, Command: Command{
			Name: cmds.Lookup,
			Args: []any{l.Words[index].Text, pointerX, l.Bounds.Y},
		}},
	}
}

// Leave handles the pointer leaving a word.
func Leave(index int) []Intent {
	return []Intent{
		{Kind: Play},
		{Kind: Unhighlight, Index: index},
		{Kind: HidePopup},
	}
}

// Press handles a button press on a word. A right click asks the host to
// explain the whole sentence; other buttons are left to the default handler.
func Press(l layout.Layout, index int, button Button, cmds Commands) []Intent {
	if button != RightButton || !valid(l, index) {
		return nil
	}
	return []Intent{
		{Kind: Pause},
		{Kind: HostCommand, Command: Command{
			Name: cmds.Explain,
			Args: []any{l.Sentence(), l.Bounds.X, l.Bounds.Y},
		}},
	}
}
