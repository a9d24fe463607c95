// Command approvalctl runs administrative tasks against the approval
// workflow database: schema migration and checks, roster import and cache
// flushes.
package main

func main() {
	execute()
}
