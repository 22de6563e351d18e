/*

Process of compilation

Quantum Program (qir) ->
	peephole + decompose, to a fixed point ->
Native-Gate Program ->
	reorder ->
Layered Program ->
	schedule ->
Zone-Scheduled Program (moves, parallel sections) ->
	validate ->
Device-Ready Program

The trace package derives a stepwise view of the scheduled output for
rendering; it is not a pipeline stage.

*/
package compiler
