package main

import "github.com/gdamore/tcell/v2"

type command int

const (
	cmdNone command = iota
	cmdDay
	cmdNight
	cmdQuit
)

// keyCommand maps the host keys: d/D day, n/N night, Esc or Ctrl-C quit.
func keyCommand(ev *tcell.EventKey) command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return cmdQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'd', 'D':
			return cmdDay
		case 'n', 'N':
			return cmdNight
		}
	}
	return cmdNone
}
