package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rafaelmdcarneiro/galette"
	"github.com/Rafaelmdcarneiro/galette/internal/gal"
	"github.com/Rafaelmdcarneiro/galette/internal/jed"
	"github.com/Rafaelmdcarneiro/galette/internal/pld"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		if err := cmdBuild(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "devices":
		for _, name := range gal.ChipNames() {
			fmt.Println(name)
		}
	case "version":
		fmt.Println(galette.Version())
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("galette - GAL assembler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  galette build <file.pld> [-o <file.jed>] [-s]")
	fmt.Println("  galette devices")
	fmt.Println("  galette version")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -o  output JED file (default: input name with .jed)")
	fmt.Println("  -s  set the security fuse")
}

func cmdBuild(args []string) error {
	outPath, secure, rest, err := parseBuildArgs(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("build requires a single input file")
	}
	inPath := rest[0]
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	content, err := pld.Parse(data)
	if err != nil {
		return err
	}
	g, err := pld.Compile(content)
	if err != nil {
		return err
	}
	if outPath == "" {
		base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
		outPath = base + ".jed"
	}
	jedText := jed.MakeJEDEC(jed.Config{
		SecurityBit: secure,
		Header:      headerLines(content, g.Chip),
	}, g)
	return os.WriteFile(outPath, []byte(jedText), 0644)
}

func parseBuildArgs(args []string) (string, bool, []string, error) {
	var outPath string
	var secure bool
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-o" || arg == "--o":
			if i+1 >= len(args) {
				return "", false, nil, errors.New("missing value for -o")
			}
			outPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "-o="):
			outPath = strings.TrimPrefix(arg, "-o=")
		case arg == "-s" || arg == "--secure":
			secure = true
		case strings.HasPrefix(arg, "-"):
			return "", false, nil, fmt.Errorf("unknown flag %s", arg)
		default:
			rest = append(rest, arg)
		}
	}
	return outPath, secure, rest, nil
}

func headerLines(c pld.Content, chip gal.Chip) []string {
	lines := []string{
		fmt.Sprintf("galette         %s", galette.Version()),
		fmt.Sprintf("Device          %s", chip.Name()),
	}
	if sig := strings.TrimSpace(c.Signature); sig != "" {
		lines = append(lines, fmt.Sprintf("Signature       %s", sig))
	}
	return lines
}
