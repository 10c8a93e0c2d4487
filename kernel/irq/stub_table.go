// Code generated by hand to give every IDT vector used by this kernel a
// distinct entry trampoline; see stub_386.s for the assembly bodies. The
// CPU does not tag an interrupt with its vector number on the stack, so a
// shared entry point cannot recover which gate fired without one of these
// per-vector stubs.
package irq

func stub0()
func stub1()
func stub2()
func stub3()
func stub4()
func stub5()
func stub6()
func stub7()
func stub8()
func stub9()
func stub10()
func stub11()
func stub12()
func stub13()
func stub14()
func stub15()
func stub16()
func stub17()
func stub18()
func stub19()
func stub20()
func stub21()
func stub22()
func stub23()
func stub24()
func stub25()
func stub26()
func stub27()
func stub28()
func stub29()
func stub30()
func stub31()
func stub32()
func stub33()
func stub34()
func stub35()
func stub36()
func stub37()
func stub38()
func stub39()
func stub40()
func stub41()
func stub42()
func stub43()
func stub44()
func stub45()
func stub46()
func stub47()
func stub128()
func stubUnhandled()
