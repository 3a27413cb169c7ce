package udf

import "bytes"

// Session evaluates functions directly, acting as the host: it binds from
// the shapes of the values it is given and owns the output buffers.
type Session struct {
	reg *Registry
}

// NewSession returns a session over reg.
func NewSession(reg *Registry) *Session {
	return &Session{reg: reg}
}

// Registry returns the registry the session binds from.
func (s *Session) Registry() *Registry {
	return s.reg
}

// Eval binds name with args as constants and evaluates a single row. The
// returned bytes are owned by the caller.
func (s *Session) Eval(name string, args ...Arg) (Result, error) {
	stmt, err := s.Prepare(name, SpecsOf(args))
	if err != nil {
		return Result{}, err
	}

	res := stmt.Exec(args...)
	res.Bytes = bytes.Clone(res.Bytes)
	return res, nil
}

// Prepare binds name with specs and allocates a buffer of the bound size.
func (s *Session) Prepare(name string, specs []ArgSpec) (*Stmt, error) {
	inst, err := s.reg.Bind(name, specs)
	if err != nil {
		return nil, err
	}
	return &Stmt{inst: inst, buf: NewOutputBuffer(inst.Bound())}, nil
}

// Stmt is a bound instance with its buffer.
type Stmt struct {
	inst Instance
	buf  *OutputBuffer
}

// Instance returns the bound instance.
func (st *Stmt) Instance() Instance {
	return st.inst
}

// Exec evaluates one row. The result aliases the statement buffer until
// the next Exec.
func (st *Stmt) Exec(args ...Arg) Result {
	return st.inst.Call(args, st.buf)
}
