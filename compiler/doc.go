/*
Package compiler is the register allocation pipeline for straight-line blocks.

Block Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	analyze ->
Three-Address Code (tac) ->
	live ->
Live-Out Sets ->
	back.Build ->
Interference Graph ->
	back.Color (simplify, select) ->
Register Assignment

*/
package compiler
