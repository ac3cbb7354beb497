package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the movi startup banner with the version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Teal-to-blue gradient
	s1 := termenv.String(" _ __ ___   _____   _(_)").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("| '_ ` _ \\ / _ \\ \\ / / |").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String("| | | | | | (_) \\ V /| |").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String("|_| |_| |_|\\___/ \\_/ |_|").Foreground(p.Color("#60a5fa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Printf("\n  fleet operations assistant %s\n\n", version)
}
