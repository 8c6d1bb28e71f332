// Package main provides the entry point for the TIM Viewer application.
package main

import (
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"timview/internal/app"
	"timview/internal/version"
	"timview/ui/mainwindow"
	"timview/ui/prefs"
)

const appTitle = "TIM Viewer"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("timview")

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.SetTitle(appTitle)

	// Any TIM paths on the command line are loaded up front.
	if len(os.Args) > 1 {
		if err := appState.LoadFiles(os.Args[1:]); err != nil {
			log.Printf("Load: %v", err)
		}
	}

	win.ShowAndRun()
}
