// Package process reads the host process table and derives session titles
// from it.
//
// # Tree
//
// Tree takes full snapshots of the process directory (normally /proc). Each
// Update lists every numeric entry, parses its stat record and rebuilds the
// parent and children mappings from scratch. The snapshot is an arena of
// nodes indexed by pid and is published atomically, so readers that race
// with an Update see either the old tree or the new one, never a mix.
//
//	tree := process.NewTree()
//	if err := tree.Update(); err != nil {
//	    return err
//	}
//	for _, pid := range tree.AllChildren(os.Getpid()) {
//	    fmt.Println(pid, tree.Cmdline(pid))
//	}
//
// Processes that exit between the directory listing and the stat read are
// skipped. Single-process lookups (Cwd, Cmdline, Stat) read the live
// directory and return empty results when the process is gone.
//
// # Parent ids
//
// When the parent field of a stat record cannot be parsed as an integer the
// node is given a synthetic parent id derived from the field text. Synthetic
// ids are negative so they never collide with real pids.
//
// # Titles
//
// Resolver turns a session's shell pid into a short label based on its
// deepest descendant: the working directory and the first word of the
// command line. Missing data of any kind yields FallbackTitle.
package process
