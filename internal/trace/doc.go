// Package trace post-processes rule traces: pruning a full derivation down
// to the rules that actually support the goals, replaying a trace forward
// to check it, and comparing traces.
package trace
