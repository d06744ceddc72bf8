// Command multiblog serves and administers a multi-tenant Notion blog
// platform.
package main

func main() {
	Execute()
}
