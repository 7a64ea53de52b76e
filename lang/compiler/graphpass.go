package compiler

import (
	"fmt"
	"strconv"

	"github.com/DrkWithT/ExpliceLang/lang/ast"
	"github.com/DrkWithT/ExpliceLang/lang/heap"
	"github.com/DrkWithT/ExpliceLang/lang/semantics"
)

// frameResetSentinel is the stack_score delta meaning "this routine's
// simulated operand stack is done being tracked past this point": ret and
// halt conclude every path that reaches them, so no later Step in that
// routine can ever need a temp_stack offset computed from whatever was
// live beforehand.
const frameResetSentinel = -100

// Run is GraphPass: it lowers a type-checked Chunk into an IRStore, one
// FlowGraph and ConstantMap per routine. hints is semantics.Analyze's
// output and supplies native call targets.
func Run(ch *ast.Chunk, hints semantics.NativeHints) (*IRStore, error) {
	b := &graphBuilder{
		hints:     hints,
		funcNames: make(map[string]Locator, len(ch.Funcs)),
		store: &IRStore{
			FuncCFGs:    make(map[int]*FlowGraph, len(ch.Funcs)),
			Descriptors: new(heap.Allocator),
			MainFuncID:  -1,
		},
	}

	for i, fn := range ch.Funcs {
		b.funcNames[fn.Name] = Locator{Region: RegionRoutines, ID: int32(i)}
		if fn.Name == "main" {
			b.store.MainFuncID = i
		}
	}
	if b.store.MainFuncID < 0 {
		return nil, fmt.Errorf("compiler: no routine named \"main\" (semantic analysis should have rejected this first)")
	}

	for i, fn := range ch.Funcs {
		g, cmap, err := b.compileRoutine(fn)
		if err != nil {
			return nil, fmt.Errorf("compiler: routine %q: %w", fn.Name, err)
		}
		b.store.FuncCFGs[i] = g
		b.store.ConstChunks = append(b.store.ConstChunks, cmap)
	}

	return b.store, nil
}

// graphBuilder holds GraphPass's state. funcNames is global and persists
// across routines; everything else is per-routine and cleared by
// resetRoutine at every routine boundary.
type graphBuilder struct {
	hints     semantics.NativeHints
	funcNames map[string]Locator
	store     *IRStore

	constMap   *ConstantMap
	localNames map[string]Locator
	paramNames map[string]Locator
	pending    []Node
	stackScore int
}

func (b *graphBuilder) resetRoutine() {
	b.constMap = NewConstantMap()
	b.localNames = make(map[string]Locator)
	b.paramNames = make(map[string]Locator)
	b.pending = nil
	b.stackScore = 0
}

func (b *graphBuilder) compileRoutine(fn *ast.FuncDecl) (*FlowGraph, *ConstantMap, error) {
	b.resetRoutine()

	for i, p := range fn.Params {
		b.paramNames[p.Name] = Locator{Region: RegionFrameSlot, ID: int32(i)}
	}

	b.placeNode(NodeUnit) // node 0: the routine's entry

	if err := b.lowerBlock(fn.Body); err != nil {
		return nil, nil, err
	}

	return b.commit(), b.constMap, nil
}

// placeNode appends a fresh, unconnected pending node and returns its id.
func (b *graphBuilder) placeNode(kind NodeKind) int32 {
	id := int32(len(b.pending))
	switch kind {
	case NodeUnit:
		b.pending = append(b.pending, Node{Kind: NodeUnit, Next: NoSuccessor})
	case NodeJuncture:
		b.pending = append(b.pending, Node{Kind: NodeJuncture, Left: NoSuccessor, Right: NoSuccessor})
	}
	return id
}

// placeStep appends step to the current Unit, opening a fresh one first if
// the last pending node is a Juncture or there is none yet.
func (b *graphBuilder) placeStep(step Step) {
	if len(b.pending) == 0 || b.pending[len(b.pending)-1].Kind != NodeUnit {
		b.placeNode(NodeUnit)
	}
	last := len(b.pending) - 1
	b.pending[last].Steps = append(b.pending[last].Steps, step)
	b.applyStackDelta(step)
}

func (b *graphBuilder) applyStackDelta(step Step) {
	d := stackDelta(step)
	if d == frameResetSentinel {
		b.stackScore = 0
		return
	}
	b.stackScore += d
}

// emitAndResult places step (which must leave exactly one new value at the
// top of the simulated stack) and returns a Locator naming that value's
// resting place.
func (b *graphBuilder) emitAndResult(step Step) Locator {
	b.placeStep(step)
	return Locator{Region: RegionTempStack, ID: int32(b.stackScore - 1)}
}

// emitPlaceholderJump appends a jump/jump_not_if Step whose target is not
// yet known, and returns the (unit, step) indices patchTarget needs to fill
// it in once the destination node exists.
func (b *graphBuilder) emitPlaceholderJump(op Opcode) (unitIdx, stepIdx int) {
	if len(b.pending) == 0 || b.pending[len(b.pending)-1].Kind != NodeUnit {
		b.placeNode(NodeUnit)
	}
	unitIdx = len(b.pending) - 1
	step := Unary(op, Locator{Region: RegionNone, ID: -1})
	b.pending[unitIdx].Steps = append(b.pending[unitIdx].Steps, step)
	stepIdx = len(b.pending[unitIdx].Steps) - 1
	b.applyStackDelta(step)
	return unitIdx, stepIdx
}

// patchTarget rewrites a previously-placeholder jump's target to name a
// node id. EmitCodePass resolves this node id to a byte offset later; this
// patch just decides *which* node, something GraphPass already knows once
// the branch's continuation has been placed.
func (b *graphBuilder) patchTarget(unitIdx, stepIdx int, targetNodeID int32) {
	b.pending[unitIdx].Steps[stepIdx].Args[0].ID = targetNodeID
}

// commit freezes pending into a FlowGraph. Every node's successor fields
// default to the next one or two pending indices;
// a field a lowering routine already set explicitly (the one case being a
// while loop's back-edge) is left alone, which is how FlowGraph ends up
// with a genuine cycle instead of a purely linear chain.
func (b *graphBuilder) commit() *FlowGraph {
	g := &FlowGraph{Nodes: make([]Node, len(b.pending))}
	for i, n := range b.pending {
		switch n.Kind {
		case NodeUnit:
			if n.Next == NoSuccessor && i+1 < len(b.pending) {
				n.Next = int32(i + 1)
			}
		case NodeJuncture:
			if n.Left == NoSuccessor && i+1 < len(b.pending) {
				n.Left = int32(i + 1)
			}
			if n.Right == NoSuccessor && i+2 < len(b.pending) {
				n.Right = int32(i + 2)
			}
		}
		g.Nodes[i] = n
	}
	return g
}

func (b *graphBuilder) resolveNamed(name string) (Locator, bool) {
	if loc, ok := b.paramNames[name]; ok {
		return loc, true
	}
	if loc, ok := b.localNames[name]; ok {
		return loc, true
	}
	return Locator{}, false
}

func (b *graphBuilder) resolveCallable(name string) (Locator, bool, bool) {
	if hint, ok := b.hints[name]; ok {
		return Locator{Region: RegionNatives, ID: int32(hint.ID)}, true, true
	}
	if loc, ok := b.funcNames[name]; ok {
		return loc, true, false
	}
	return Locator{}, false, false
}

// lowerBlock lowers every statement of b in order. The block itself never
// introduces a node: individual statements do that.
func (b *graphBuilder) lowerBlock(blk *ast.Block) error {
	for _, stmt := range blk.Stmts {
		if err := b.lowerStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *graphBuilder) lowerStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return b.lowerDecl(s.Name, s.Init)
	case *ast.ConstStmt:
		return b.lowerDecl(s.Name, s.Init)
	case *ast.IfStmt:
		return b.lowerIf(s)
	case *ast.WhileStmt:
		return b.lowerWhile(s)
	case *ast.ReturnStmt:
		return b.lowerReturn(s)
	case *ast.BlockStmt:
		return b.lowerBlock(s.Block)
	case *ast.ExprStmt:
		// Intentionally emits no pop: the result is left on the operand
		// stack.
		_, err := b.lowerExpr(s.X)
		return err
	default:
		return fmt.Errorf("unexpected statement kind %T", stmt)
	}
}

func (b *graphBuilder) lowerDecl(name string, init ast.Expr) error {
	loc, err := b.lowerExpr(init)
	if err != nil {
		return err
	}
	b.localNames[name] = loc
	return nil
}

func (b *graphBuilder) lowerReturn(s *ast.ReturnStmt) error {
	var loc Locator
	if s.Result != nil {
		l, err := b.lowerExpr(s.Result)
		if err != nil {
			return err
		}
		loc = l
	} else {
		loc = NoLocator
	}
	b.placeStep(Unary(OpRet, loc))
	return nil
}

// lowerIf implements: lower the test; emit jump_not_if(_); place a
// Juncture; place a Unit for the truthy body, lower it, emit jump(_) at its
// end; place a Unit for the falsy body (if any) and lower it; place a
// terminating noop and a fresh empty Unit so later statements attach to a
// clean successor.
func (b *graphBuilder) lowerIf(s *ast.IfStmt) error {
	if _, err := b.lowerExpr(s.Test); err != nil {
		return err
	}
	jniUnit, jniStep := b.emitPlaceholderJump(OpJumpNotIf)

	b.placeNode(NodeJuncture)

	b.placeNode(NodeUnit)
	if err := b.lowerBlock(s.Then); err != nil {
		return err
	}
	jmpUnit, jmpStep := b.emitPlaceholderJump(OpJump)

	falsyID := b.placeNode(NodeUnit)
	if s.Alt != nil {
		if err := b.lowerBlock(s.Alt); err != nil {
			return err
		}
	}

	b.placeStep(Nonary(OpNoop))
	postID := b.placeNode(NodeUnit)

	b.patchTarget(int(jniUnit), jniStep, falsyID)
	b.patchTarget(int(jmpUnit), jmpStep, postID)
	return nil
}

// lowerWhile implements: lower the loop test (in a node of its own, so the
// back-edge jump lands exactly on the test's first instruction and not on
// whatever preceded the loop); emit jump_not_if(_); place a Juncture; place
// the body Unit, lower it, emit jump(_) back to the header; place a
// post-loop Unit.
func (b *graphBuilder) lowerWhile(s *ast.WhileStmt) error {
	headerID := b.placeNode(NodeUnit)

	if _, err := b.lowerExpr(s.Test); err != nil {
		return err
	}
	jniUnit, jniStep := b.emitPlaceholderJump(OpJumpNotIf)

	b.placeNode(NodeJuncture)

	b.placeNode(NodeUnit)
	if err := b.lowerBlock(s.Body); err != nil {
		return err
	}
	backUnit, backStep := b.emitPlaceholderJump(OpJump)
	b.patchTarget(int(backUnit), backStep, headerID)
	b.pending[backUnit].Next = headerID // explicit back-edge: FlowGraph gets a real cycle

	postID := b.placeNode(NodeUnit)
	b.patchTarget(int(jniUnit), jniStep, postID)
	return nil
}

// lowerExpr lowers x and returns a Locator naming where its value now lives:
// RegionTempStack for every form that leaves its result at the top of the
// simulated stack, and for an assignment the assigned variable's own
// locator (a frame_slot when the target is a parameter).
func (b *graphBuilder) lowerExpr(x ast.Expr) (Locator, error) {
	switch e := x.(type) {
	case *ast.BoolLit:
		info := b.constMap.Intern(e.Lit, Bool(e.Lit == "true"))
		return b.emitAndResult(Unary(OpLoadConst, Locator{Region: RegionConsts, ID: int32(info.ID)})), nil

	case *ast.IntLit:
		n, err := strconv.ParseInt(e.Lit, 10, 64)
		if err != nil {
			return Locator{}, fmt.Errorf("malformed int literal %q: %w", e.Lit, err)
		}
		info := b.constMap.Intern(e.Lit, Int(n))
		return b.emitAndResult(Unary(OpLoadConst, Locator{Region: RegionConsts, ID: int32(info.ID)})), nil

	case *ast.FloatLit:
		f, err := strconv.ParseFloat(e.Lit, 64)
		if err != nil {
			return Locator{}, fmt.Errorf("malformed float literal %q: %w", e.Lit, err)
		}
		info := b.constMap.Intern(e.Lit, Float(f))
		return b.emitAndResult(Unary(OpLoadConst, Locator{Region: RegionConsts, ID: int32(info.ID)})), nil

	case *ast.StringLit:
		// String values stop at the front end: they lex, parse, and
		// type-check, but there is no runtime representation to intern a
		// string constant into.
		return Locator{}, errf(ErrAccess, "string literal %q is not supported", e.Lit)

	case *ast.NameExpr:
		loc, ok := b.resolveNamed(e.Name)
		if !ok {
			return Locator{}, fmt.Errorf("undefined name %q (semantic analysis should have rejected this first)", e.Name)
		}
		return b.emitAndResult(Unary(OpPush, loc)), nil

	case *ast.UnaryExpr:
		if _, err := b.lowerExpr(e.Right); err != nil {
			return Locator{}, err
		}
		return b.emitAndResult(Nonary(OpNegate)), nil

	case *ast.BinaryExpr:
		return b.lowerBinary(e)

	case *ast.AssignExpr:
		return b.lowerAssign(e)

	case *ast.CallExpr:
		return b.lowerCall(e)

	case *ast.AccessExpr:
		left, err := b.lowerExpr(e.Left)
		if err != nil {
			return Locator{}, err
		}
		right, err := b.lowerExpr(e.Right)
		if err != nil {
			return Locator{}, err
		}
		return b.emitAndResult(Binary(OpAccessField, left, right)), nil

	default:
		return Locator{}, fmt.Errorf("unexpected expression kind %T", x)
	}
}

// lowerBinary evaluates operands in a per-operator-class order: add/mul,
// cmp_eq/cmp_ne and log_and/log_or evaluate left then right; sub/div and
// cmp_lt/cmp_gt "lean right" and evaluate right then left. The dispatch
// loop pops in the matching order.
func (b *graphBuilder) lowerBinary(e *ast.BinaryExpr) (Locator, error) {
	var op Opcode
	leansRight := false

	switch e.Op.String() {
	case "+":
		op = OpAdd
	case "-":
		op, leansRight = OpSub, true
	case "*":
		op = OpMul
	case "/":
		op, leansRight = OpDiv, true
	case "==":
		op = OpCmpEq
	case "!=":
		op = OpCmpNe
	case "<":
		op, leansRight = OpCmpLt, true
	case ">":
		op, leansRight = OpCmpGt, true
	case "&&":
		op = OpLogAnd
	case "||":
		op = OpLogOr
	default:
		return Locator{}, fmt.Errorf("unexpected binary operator %q", e.Op.GoString())
	}

	if leansRight {
		if _, err := b.lowerExpr(e.Right); err != nil {
			return Locator{}, err
		}
		if _, err := b.lowerExpr(e.Left); err != nil {
			return Locator{}, err
		}
	} else {
		if _, err := b.lowerExpr(e.Left); err != nil {
			return Locator{}, err
		}
		if _, err := b.lowerExpr(e.Right); err != nil {
			return Locator{}, err
		}
	}

	return b.emitAndResult(Nonary(op)), nil
}

// lowerAssign evaluates the rhs and emits a replace into the lhs slot.
// lhs must be a name: lang/semantics rejects access-expression lvalues,
// since access itself is an unimplemented opcode. The expression's own
// value is the variable's locator; nothing in this grammar nests an
// assignment inside a larger expression, so there is no occasion where
// that matters.
func (b *graphBuilder) lowerAssign(e *ast.AssignExpr) (Locator, error) {
	name, ok := e.Left.(*ast.NameExpr)
	if !ok {
		return Locator{}, fmt.Errorf("assignment target must be a name (got %T)", e.Left)
	}
	target, ok := b.resolveNamed(name.Name)
	if !ok {
		return Locator{}, fmt.Errorf("undefined name %q (semantic analysis should have rejected this first)", name.Name)
	}

	if _, err := b.lowerExpr(e.Right); err != nil {
		return Locator{}, err
	}
	b.placeStep(Unary(OpReplace, target))
	return target, nil
}

// lowerCall pushes arguments right-to-left (iterating argc-1..0), then
// emits call or call_native depending on whether the callee resolves to a
// native hint or a user routine. Popping at the call site then yields the
// arguments in source order.
func (b *graphBuilder) lowerCall(e *ast.CallExpr) (Locator, error) {
	callee, ok, native := b.resolveCallable(e.Callee.Name)
	if !ok {
		return Locator{}, fmt.Errorf("undefined callee %q (semantic analysis should have rejected this first)", e.Callee.Name)
	}

	for i := len(e.Args) - 1; i >= 0; i-- {
		if _, err := b.lowerExpr(e.Args[i]); err != nil {
			return Locator{}, err
		}
	}

	argc := Locator{Region: RegionNone, ID: int32(len(e.Args))}
	if native {
		moduleID := Locator{Region: RegionNone, ID: 0}
		return b.emitAndResult(Ternary(OpCallNative, moduleID, callee, argc)), nil
	}
	return b.emitAndResult(Binary(OpCall, callee, argc)), nil
}

// stackDelta is the per-opcode simulated-stack-depth change GraphPass uses
// to compute temp_stack slots. Ops whose delta depends
// on an operand (pop/make_array/make_tuple/call/call_native) read the
// count out of the Step's own Args.
func stackDelta(step Step) int {
	switch step.Op {
	case OpRet, OpHalt:
		return frameResetSentinel
	case OpNoop:
		return 0
	case OpReplace:
		return -1
	case OpPush, OpPeek, OpLoadConst:
		return 1
	case OpPop:
		return -int(step.Args[0].ID)
	case OpMakeArray, OpMakeTuple:
		return 1 - int(step.Args[0].ID)
	case OpAccessField:
		return 1
	case OpNegate:
		return 0
	case OpAdd, OpSub, OpMul, OpDiv,
		OpCmpEq, OpCmpNe, OpCmpLt, OpCmpGt,
		OpLogAnd, OpLogOr:
		return -1
	case OpJump:
		return 0
	case OpJumpNotIf:
		return -1
	case OpCall:
		return 1 - int(step.Args[1].ID)
	case OpCallNative:
		return 1 - int(step.Args[2].ID)
	default:
		return 0
	}
}
