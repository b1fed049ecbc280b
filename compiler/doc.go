/*

Process of compilation

Program Text ->
	front.Parse ->
Abstract Syntax Tree (ast) ->
	front.Lower ->
Intermediate Representation (ir), one Alloca per local ->
	mem2reg.Run ->
Intermediate Representation (ir), in SSA form ->
	gvn.Run ->
Intermediate Representation (ir), hash-consed and constant-folded ->
	dce.Run ->
Intermediate Representation (ir), dead code and CFG redundancy removed ->
	ir.Print ->
Textual IR

There is no backend: a machine-code object file and its linking step are
out of scope, so the pipeline ends at the printed IR.

*/
package compiler
