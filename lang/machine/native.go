package machine

import "time"

// clockStart anchors the clock() builtin (§6) so that successive calls
// within one process return a monotonically increasing number of seconds
// since process start rather than an epoch timestamp.
var clockStart = time.Now()

func nativeClock(argc int, args []Value) (Value, error) {
	return Number(time.Since(clockStart).Seconds()), nil
}

// defineNatives registers every builtin native function into globals.
func (vm *VM) defineNatives() {
	vm.SetGlobal("clock", FromObject(newObjNative(nativeClock)))
}
