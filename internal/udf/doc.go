// Package udf implements the bind/call contract the string functions expose
// to a host query engine.
//
// A Function is bound once per query with the shapes of its arguments
// (type, maximum byte length and, for constants, the value). Binding either
// fails with a *BindError, before any row is processed, or yields an
// Instance carrying its SizeBound. The host then lends the Instance an
// OutputBuffer of at least that capacity for every row:
//
//	inst, err := fn.Bind(specs)
//	if err != nil {
//	    return err // configuration problem; the query must not run
//	}
//	buf := udf.NewOutputBuffer(inst.Bound())
//	for _, row := range rows {
//	    res := inst.Call(row, buf)
//	    ...
//	}
//
// NULL propagation is handled here, not in the transforms: a NULL in any
// argument position that propagates NULL yields a NULL Result without
// running the transform. Row calls never fail.
//
// An Instance owns its random state and its buffer contract; it is not
// safe for concurrent use. Bind as many instances as there are concurrent
// executions.
package udf
