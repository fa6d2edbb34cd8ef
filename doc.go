// Package nurbs provides primitives and routines for polynomial B-spline
// curves and surfaces in 3D space, centered on a surface-construction kernel
// implementing Gordon's algorithm: given a rectangular network of curves that
// mutually intersect at a known grid of points, build a single surface that
// interpolates the whole network.
//
// # Features
//
// We provide the following notable features:
//
//   - Gordon surfaces from curve networks (see [GordonSurface])
//   - Lofting an ordered family of curves (see [Loft])
//   - Global interpolation of curves and point grids (see [InterpolateCurve]
//     and [InterpolateGrid])
//   - Curve reparametrization to integer breakpoints (see [Reparametrize])
//   - Degree and knot-vector unification (see [UnifyCurves] and
//     [UnifySurfaces])
//   - Tangent-continuous blend surfaces between two surfaces (see
//     [BlendSurfaces])
//   - Birail sweep surfaces (see [Birail])
//
// # Curves and surfaces
//
// The two core types are [Curve] and [Surface]: clamped B-splines described
// by a degree, a non-decreasing knot vector, control points, and optional
// per-point weights. Both are immutable value objects; every operation
// returns a new object and never mutates its inputs. Calls with disjoint
// inputs are therefore safe to run concurrently.
//
// Gordon's construction is defined for polynomial (non-rational) curves
// only; supplying rational curves to [GordonSurface] fails with
// [ErrUnsupportedInput]. The remaining primitives handle rational inputs
// where the underlying algorithm does.
//
// # Errors
//
// All failures are one of three kinds, matched with errors.Is:
// [ErrInvalidInput] for malformed arguments, [ErrUnsupportedInput] for
// rational curves in Gordon's construction, and [ErrNumericalFailure] for
// singular interpolation systems, degenerate segments, and unification that
// cannot preserve geometry within tolerance. Failures are detected eagerly
// and propagate unchanged; no partial surface is ever returned.
//
// # Literature
//
// This package makes use of the following ideas:
//   - [The NURBS Book] by Piegl and Tiller, in particular algorithms A2.1
//     through A2.3, A5.4, A5.9, A9.1, A9.4, and the Gordon construction of
//     chapter 10.5
//   - [Sculptured Surface Definition via Blending-Function Methods] by
//     William J. Gordon
//
// [The NURBS Book]: https://doi.org/10.1007/978-3-642-59223-2
// [Sculptured Surface Definition via Blending-Function Methods]: https://doi.org/10.1016/B978-0-08-050755-2.50049-9
package nurbs
