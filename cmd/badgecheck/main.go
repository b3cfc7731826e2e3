package main

import "github.com/openbadges/badgecheck/cmd/badgecheck/app"

func main() {
	app.Execute()
}
