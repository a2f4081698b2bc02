//go:build cuda

package cu

// ptxConv3x3 accumulates a valid 3x3 correlation into dst, one thread per
// output element. Products and sums are rounded separately, matching the
// software kernels.
const ptxConv3x3 = `
.version 6.0
.target sm_30
.address_size 64

.visible .entry conv3x3(
	.param .u64 conv3x3_dst,
	.param .u64 conv3x3_src,
	.param .u64 conv3x3_k,
	.param .u32 conv3x3_inW,
	.param .u32 conv3x3_outH,
	.param .u32 conv3x3_outW
)
{
	.reg .pred %p<3>;
	.reg .b32 %r<16>;
	.reg .f32 %f<24>;
	.reg .b64 %rd<12>;

	ld.param.u64 %rd1, [conv3x3_dst];
	ld.param.u64 %rd2, [conv3x3_src];
	ld.param.u64 %rd3, [conv3x3_k];
	ld.param.u32 %r1, [conv3x3_inW];
	ld.param.u32 %r2, [conv3x3_outH];
	ld.param.u32 %r3, [conv3x3_outW];

	mov.u32 %r4, %ctaid.x;
	mov.u32 %r5, %ntid.x;
	mov.u32 %r6, %tid.x;
	mad.lo.u32 %r7, %r4, %r5, %r6;
	mov.u32 %r8, %ctaid.y;
	mov.u32 %r9, %ntid.y;
	mov.u32 %r10, %tid.y;
	mad.lo.u32 %r11, %r8, %r9, %r10;
	setp.ge.u32 %p1, %r7, %r3;
	setp.ge.u32 %p2, %r11, %r2;
	or.pred %p1, %p1, %p2;
	@%p1 bra DONE;

	cvta.to.global.u64 %rd1, %rd1;
	cvta.to.global.u64 %rd2, %rd2;
	cvta.to.global.u64 %rd3, %rd3;

	mad.lo.u32 %r12, %r11, %r1, %r7;
	mul.wide.u32 %rd4, %r12, 4;
	add.s64 %rd4, %rd2, %rd4;
	mul.wide.u32 %rd5, %r1, 4;
	add.s64 %rd6, %rd4, %rd5;
	add.s64 %rd7, %rd6, %rd5;

	ld.global.f32 %f1, [%rd3];
	ld.global.f32 %f2, [%rd3+4];
	ld.global.f32 %f3, [%rd3+8];
	ld.global.f32 %f4, [%rd3+12];
	ld.global.f32 %f5, [%rd3+16];
	ld.global.f32 %f6, [%rd3+20];
	ld.global.f32 %f7, [%rd3+24];
	ld.global.f32 %f8, [%rd3+28];
	ld.global.f32 %f9, [%rd3+32];

	ld.global.f32 %f10, [%rd4];
	ld.global.f32 %f11, [%rd4+4];
	ld.global.f32 %f12, [%rd4+8];
	ld.global.f32 %f13, [%rd6];
	ld.global.f32 %f14, [%rd6+4];
	ld.global.f32 %f15, [%rd6+8];
	ld.global.f32 %f16, [%rd7];
	ld.global.f32 %f17, [%rd7+4];
	ld.global.f32 %f18, [%rd7+8];

	mov.f32 %f20, 0f00000000;
	mul.rn.f32 %f21, %f10, %f1;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f11, %f2;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f12, %f3;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f13, %f4;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f14, %f5;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f15, %f6;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f16, %f7;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f17, %f8;
	add.rn.f32 %f20, %f20, %f21;
	mul.rn.f32 %f21, %f18, %f9;
	add.rn.f32 %f20, %f20, %f21;

	mad.lo.u32 %r13, %r11, %r3, %r7;
	mul.wide.u32 %rd8, %r13, 4;
	add.s64 %rd8, %rd1, %rd8;
	ld.global.f32 %f22, [%rd8];
	add.rn.f32 %f22, %f22, %f20;
	st.global.f32 [%rd8], %f22;

DONE:
	ret;
}
`
