// Package main provides the distribution CLI, which assembles the
// per-country app configuration tree for the CDN.
package main

func main() {
	Execute()
}
