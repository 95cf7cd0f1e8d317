package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/barnettlynn/s6hcs/pkg/progress"
	"github.com/barnettlynn/s6hcs/pkg/session"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	addr := flag.String("addr", "127.0.0.1:2794", "server address")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "get-files":
		runGetFiles(*addr)
	case "upload":
		if len(args) < 2 {
			fmt.Println("usage: s6hcs-client upload <file>")
			os.Exit(1)
		}
		runUpload(*addr, args[1])
	case "download":
		runDownload(*addr, args[1:])
	case "delete":
		runDelete(*addr, args[1:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: s6hcs-client [-addr host:port] <get-files|upload|download|delete> [args]")
}

func progressCallback() session.ProgressFunc {
	return func(ev progress.Event) {
		if ev.Phase == progress.Connecting {
			fmt.Printf("%s...\n", ev.Phase)
			return
		}
		fmt.Printf("\r%s: %3d%%", ev.Phase, ev.Percent)
		if ev.Percent >= 100 {
			fmt.Println()
		}
	}
}

func runGetFiles(addr string) {
	entries, err := session.GetFiles(addr)
	if err != nil {
		fmt.Printf("get-files failed: %v\n", err)
		os.Exit(1)
	}
	printEntries(entries)
}

func printEntries(entries []session.FileEntry) {
	if len(entries) == 0 {
		fmt.Println("(no files stored)")
		return
	}
	fmt.Println("ID                                        Size        Name")
	for _, e := range entries {
		fmt.Printf("%-40s %10d  %s\n", e.ID, e.SizeInBytes, e.DisplayName)
	}
}

func runUpload(addr, path string) {
	if err := session.Upload(addr, path, progressCallback()); err != nil {
		fmt.Printf("upload failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("upload complete")
}

// runDownload accepts either an explicit id or, with no id given, opens an
// interactive picker over the server's current file list.
func runDownload(addr string, args []string) {
	id, outPath := resolveIDAndPath(addr, args, "downloaded")
	if err := session.Download(addr, id, outPath, progressCallback()); err != nil {
		fmt.Printf("download failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("downloaded to %s\n", outPath)
}

func runDelete(addr string, args []string) {
	var id string
	if len(args) >= 1 {
		id = args[0]
	} else {
		id = pickFile(addr)
	}
	if id == "" {
		fmt.Println("nothing selected")
		os.Exit(1)
	}
	if err := session.Delete(addr, id); err != nil {
		fmt.Printf("delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("deleted")
}

func resolveIDAndPath(addr string, args []string, defaultName string) (id, outPath string) {
	switch {
	case len(args) >= 2:
		return args[0], args[1]
	case len(args) == 1:
		return args[0], defaultName
	default:
		return pickFile(addr), defaultName
	}
}

// pickFile fetches the file list and opens an arrow-key menu over it,
// returning the selected record's id (or "" if nothing is selectable).
func pickFile(addr string) string {
	entries, err := session.GetFiles(addr)
	if err != nil {
		fmt.Printf("get-files failed: %v\n", err)
		return ""
	}
	if len(entries) == 0 {
		fmt.Println("(no files stored)")
		return ""
	}
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = fmt.Sprintf("%s  (%d bytes)  %s", e.DisplayName, e.SizeInBytes, e.ID)
	}
	idx := selectMenu("Select a file:", items)
	if idx < 0 {
		return ""
	}
	return entries[idx].ID
}

// selectMenu renders an arrow-key-navigable list on a raw-mode terminal and
// returns the chosen index, or -1 on failure or interrupt.
func selectMenu(prompt string, items []string) int {
	if len(items) == 0 {
		return -1
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting raw mode: %v\r\n", err)
		return -1
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	selected := 0

	fmt.Printf("%s\r\n", prompt)
	for i, item := range items {
		if i == selected {
			fmt.Printf("> %s\r\n", item)
		} else {
			fmt.Printf("  %s\r\n", item)
		}
	}

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			break
		}

		if n == 1 {
			switch buf[0] {
			case 0x0D, 0x0A:
				fmt.Printf("\r\n")
				return selected
			case 0x03:
				term.Restore(int(os.Stdin.Fd()), oldState)
				fmt.Printf("\r\n")
				os.Exit(0)
			}
		} else if n == 3 && buf[0] == 0x1B && buf[1] == '[' {
			needRedraw := false
			switch buf[2] {
			case 'A':
				if selected > 0 {
					selected--
					needRedraw = true
				}
			case 'B':
				if selected < len(items)-1 {
					selected++
					needRedraw = true
				}
			}

			if needRedraw {
				fmt.Printf("\033[%dA", len(items))
				for i, item := range items {
					fmt.Print("\033[2K\r")
					if i == selected {
						fmt.Printf("> %s\r\n", item)
					} else {
						fmt.Printf("  %s\r\n", item)
					}
				}
			}
		}
	}

	return selected
}
