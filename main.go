package main

import "chatRelay/cmd/app"

func main() {
	app.NewApp().LetsGo()
}
