package ui

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

var (
	warn    = color.New(color.FgYellow)
	fail    = color.New(color.FgRed)
	success = color.New(color.FgGreen)
	info    = color.New(color.FgBlue)
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(format string, args ...interface{}) {
	warn.Printf("Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintError displays an error message with consistent formatting
func PrintError(format string, args ...interface{}) {
	fail.Printf("\nError: %s\n", fmt.Sprintf(format, args...))
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(format string, args ...interface{}) {
	success.Printf("%s\n", fmt.Sprintf(format, args...))
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(format string, args ...interface{}) {
	info.Printf("%s\n", fmt.Sprintf(format, args...))
}

func PrintSection(title string) {
	info.Println("================================================================================")
	info.Println(title)
	info.Println("================================================================================")
}

func PrintBanner() {
	color.Cyan(figure.NewFigure("Pantanal", "isometric1", true).String())
	fmt.Println()
}
