// Command membershipd is a standalone demo process embedding the
// membership library. It is not part of the library's API surface; it
// exists to exercise the library end to end against real gRPC sockets.
package main

func main() {
	execute()
}
