package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"icelink/admin"
	"icelink/ice"
	"icelink/proxy"
	"icelink/transport"
)

// browser is the interactive console: a tree of registered proxies on
// the left, an operation log on the right, and a command bar across
// the bottom, composed from tview primitives in a Flex layout with a
// shared status bar.
type browser struct {
	app       *tview.Application
	reg       *admin.Registry
	tree      *tview.TreeView
	root      *tview.TreeNode
	log       *tview.TextView
	statusBar *tview.TextView
	command   *tview.InputField
}

func newBrowser(reg *admin.Registry) *browser {
	b := &browser{
		app: tview.NewApplication(),
		reg: reg,
	}
	b.setupUI()
	return b
}

func (b *browser) setupUI() {
	b.root = tview.NewTreeNode("proxies").SetColor(tcell.ColorWhite)
	b.tree = tview.NewTreeView().SetRoot(b.root).SetCurrentNode(b.root)
	b.tree.SetBorder(true).SetTitle(" Connections ")
	b.tree.SetSelectedFunc(b.onSelect)

	b.log = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.log.SetBorder(true).SetTitle(" Activity ")

	b.statusBar = tview.NewTextView().SetDynamicColors(true)
	b.statusBar.SetText("[yellow]ready[-] — type a command and press Enter")

	b.command = tview.NewInputField().SetLabel("> ")
	b.command.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		b.runCommand(b.command.GetText())
		b.command.SetText("")
	})

	body := tview.NewFlex().
		AddItem(b.tree, 0, 1, true).
		AddItem(b.log, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(b.statusBar, 1, 0, false).
		AddItem(b.command, 1, 0, false)

	b.app.SetRoot(root, true).SetFocus(b.tree)
	b.refreshTree()
}

// runCommand interprets one command-bar line. Supported forms:
//
//	connect <name> <host>:<port> <identity>   dial and register a proxy
//	ping <name>                               ice_ping the named proxy
//	ids <name>                                ice_ids the named proxy
//	close <name>                              drop the named proxy
func (b *browser) runCommand(line string) {
	fields := splitFields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "connect":
		if len(fields) != 4 {
			b.logLine("[red]usage: connect <name> <host>:<port> <identity>[-]")
			return
		}
		b.cmdConnect(fields[1], fields[2], fields[3])
	case "ping":
		if len(fields) != 2 {
			b.logLine("[red]usage: ping <name>[-]")
			return
		}
		b.cmdPing(fields[1])
	case "ids":
		if len(fields) != 2 {
			b.logLine("[red]usage: ids <name>[-]")
			return
		}
		b.cmdIDs(fields[1])
	case "close":
		if len(fields) != 2 {
			b.logLine("[red]usage: close <name>[-]")
			return
		}
		if p, ok := b.reg.Get(fields[1]); ok {
			p.Close()
		}
		b.reg.Remove(fields[1])
		b.logLine(fmt.Sprintf("closed %s", fields[1]))
		b.refreshTree()
	default:
		b.logLine(fmt.Sprintf("[red]unknown command %q[-]", fields[0]))
	}
}

func (b *browser) cmdConnect(name, hostport, identity string) {
	host, port, err := splitHostPort(hostport)
	if err != nil {
		b.logLine(fmt.Sprintf("[red]%v[-]", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := proxy.NewProxy(ctx, transport.TCPDialer{}, host, port, ice.NewIdentity(identity))
	if err != nil {
		b.reg.RecordError(name, err)
		b.logLine(fmt.Sprintf("[red]connect %s failed: %v[-]", name, err))
		return
	}
	b.reg.Register(name, p)
	b.logLine(fmt.Sprintf("[green]connected %s -> %s:%d[-]", name, host, port))
	b.refreshTree()
}

func (b *browser) cmdPing(name string) {
	p, ok := b.reg.Get(name)
	if !ok {
		b.logLine(fmt.Sprintf("[red]no such proxy %q[-]", name))
		return
	}
	if err := p.IcePing(); err != nil {
		b.reg.RecordError(name, err)
		b.logLine(fmt.Sprintf("[red]ping %s failed: %v[-]", name, err))
		return
	}
	b.reg.RecordError(name, nil)
	b.logLine(fmt.Sprintf("[green]ping %s ok[-]", name))
}

func (b *browser) cmdIDs(name string) {
	p, ok := b.reg.Get(name)
	if !ok {
		b.logLine(fmt.Sprintf("[red]no such proxy %q[-]", name))
		return
	}
	ids, err := p.IceIDs()
	if err != nil {
		b.logLine(fmt.Sprintf("[red]ice_ids %s failed: %v[-]", name, err))
		return
	}
	b.logLine(fmt.Sprintf("%s implements: %v", name, ids))
}

func (b *browser) onSelect(node *tview.TreeNode) {
	ref := node.GetReference()
	name, ok := ref.(string)
	if !ok {
		return
	}
	b.cmdIDs(name)
}

func (b *browser) refreshTree() {
	b.root.ClearChildren()
	for _, e := range b.reg.List() {
		label := e.Name + "  [" + e.Identity.String() + "]"
		if !e.Connected {
			label = "[red]" + label + " (error)[-]"
		}
		node := tview.NewTreeNode(label).SetReference(e.Name)
		b.root.AddChild(node)
	}
}

func (b *browser) logLine(s string) {
	fmt.Fprintln(b.log, s)
	b.app.Draw()
}

func (b *browser) run() error {
	return b.app.Run()
}
