package machine

// frame is one activation record on the VM's call stack (§3). It does not
// own a value stack of its own: ip walks the callee's chunk, and slotBase is
// the offset into the VM's single shared value stack where this call's
// locals (including the function value itself, in slot 0) begin.
type frame struct {
	fn       *Object
	ip       int
	slotBase int
}
