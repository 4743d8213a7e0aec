// Command server runs the company staging portal and its maintenance tasks.
package main

func main() {
	Execute()
}
