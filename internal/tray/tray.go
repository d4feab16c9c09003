// Package tray provides the system tray menu using getlantern/systray.
package tray

import (
	"log"

	"padkey/internal/overlay"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Tooltip  string
	Callback func()
	item     *systray.MenuItem
}

// Tray manages the system tray icon and menu. It implements overlay.Notifier
// so the Active check mark follows the activation state.
type Tray struct {
	commands overlay.Commands
	onQuit   func()

	items    []*MenuItem
	activeID int
	active   chan bool // latest activation state not yet shown
	quitCh   chan struct{}
}

var _ overlay.Notifier = (*Tray)(nil)

// New creates the tray menu. onQuit runs when the user picks Quit.
func New(cmds overlay.Commands, onQuit func()) *Tray {
	t := &Tray{
		commands: cmds,
		onQuit:   onQuit,
		active:   make(chan bool, 1),
		quitCh:   make(chan struct{}),
	}

	t.activeID = t.addMenuItem("Active", "Toggle controller input (Start+Select)", cmds.ToggleActive)
	t.addMenuItem("Show Keyboard", "Open the on-screen keyboard", cmds.OpenOverlay)
	t.addMenuItem("Hide Keyboard", "Close the on-screen keyboard", cmds.CloseOverlay)
	t.addSeparator()
	t.addMenuItem("Quit", "Quit padkey", func() {
		log.Println("Tray: quit requested")
		if t.onQuit != nil {
			t.onQuit()
		}
	})
	return t
}

func (t *Tray) addMenuItem(title, tooltip string, callback func()) int {
	id := len(t.items)
	t.items = append(t.items, &MenuItem{
		ID:       id,
		Title:    title,
		Tooltip:  tooltip,
		Callback: callback,
	})
	return id
}

func (t *Tray) addSeparator() {
	t.items = append(t.items, nil) // nil indicates separator
}

// Notify records activation changes for the menu. It never blocks; only the
// most recent state is kept.
func (t *Tray) Notify(ev overlay.Event) {
	a, ok := ev.(overlay.ActiveChanged)
	if !ok {
		return
	}
	for {
		select {
		case t.active <- a.Active:
			return
		default:
		}
		select {
		case <-t.active:
		default:
		}
	}
}

// Run starts the tray event loop. It blocks and must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle("padkey")
	systray.SetTooltip("padkey: controller to keyboard and mouse")
	systray.SetIcon(icon())

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}
		menuItem.item = systray.AddMenuItem(menuItem.Title, menuItem.Tooltip)

		// Handle clicks in goroutine
		if menuItem.Callback != nil {
			go func(mi *MenuItem) {
				for {
					select {
					case <-mi.item.ClickedCh:
						mi.Callback()
					case <-t.quitCh:
						return
					}
				}
			}(menuItem)
		}
	}

	t.setActive(t.commands.Status().Active)
	go t.watchActive()
}

func (t *Tray) watchActive() {
	for {
		select {
		case active := <-t.active:
			t.setActive(active)
		case <-t.quitCh:
			return
		}
	}
}

func (t *Tray) setActive(active bool) {
	item := t.items[t.activeID].item
	if item == nil {
		return
	}
	if active {
		item.Check()
	} else {
		item.Uncheck()
	}
}
